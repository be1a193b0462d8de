// Package diagnostics collects every user-visible problem the analysis core
// can report. Each domain of diagnostics is produced by a separate unit of
// code to keep the separation of concerns and avoid error duplication.
package diagnostics

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
)

// Source identifier attached to published LSP diagnostics.
const Source = "witcherscript-ls"

// Domain groups diagnostic kinds by the subsystem that emits them.
type Domain int

const (
	DomainProjectSystem Domain = iota
	DomainSyntaxAnalysis
	DomainContextualSyntaxAnalysis
	DomainSymbolAnalysis
	DomainWorkspaceSymbolAnalysis
)

// Kind is one concrete diagnostic variety.
type Kind interface {
	Code() string
	Domain() Domain
	Severity() protocol.DiagnosticSeverity
	Message() string
}

// RelatedInfo points at a second location that explains the diagnostic,
// e.g. the precursor declaration of a name collision.
type RelatedInfo struct {
	Path    abspath.Path
	Range   protocol.Range
	Message string
}

// RelatedKind is implemented by kinds that carry a related location.
type RelatedKind interface {
	Kind
	Related() *RelatedInfo
}

// Diagnostic tags a kind with the source range it applies to.
type Diagnostic struct {
	Range protocol.Range
	Kind  Kind
}

// Located is a diagnostic attributed to a file.
type Located struct {
	Path       abspath.Path
	Diagnostic Diagnostic
}

// ToLSP converts the diagnostic into its protocol representation.
func (d Diagnostic) ToLSP() protocol.Diagnostic {
	severity := d.Kind.Severity()
	code := protocol.IntegerOrString{Value: d.Kind.Code()}
	source := Source

	out := protocol.Diagnostic{
		Range:    d.Range,
		Severity: &severity,
		Code:     &code,
		Source:   &source,
		Message:  d.Kind.Message(),
	}

	if rk, ok := d.Kind.(RelatedKind); ok {
		if ri := rk.Related(); ri != nil {
			out.RelatedInformation = []protocol.DiagnosticRelatedInformation{{
				Location: protocol.Location{
					URI:   protocol.DocumentUri(ri.Path.URI()),
					Range: ri.Range,
				},
				Message: ri.Message,
			}}
		}
	}

	return out
}
