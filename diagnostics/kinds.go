package diagnostics

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/teranos/witcherscript-ls/abspath"
)

// ---- project system ----

type InvalidProjectManifest struct{ Msg string }

func (InvalidProjectManifest) Code() string   { return "invalid-project-manifest" }
func (InvalidProjectManifest) Domain() Domain { return DomainProjectSystem }
func (InvalidProjectManifest) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k InvalidProjectManifest) Message() string {
	return "This project manifest is invalid: " + k.Msg
}

type InvalidProjectName struct{}

func (InvalidProjectName) Code() string   { return "invalid-project-name" }
func (InvalidProjectName) Domain() Domain { return DomainProjectSystem }
func (InvalidProjectName) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (InvalidProjectName) Message() string {
	return "The name of the project is invalid: it must begin with a letter or underscore and contain only alphanumeric characters and underscores"
}

type InvalidRedkitProjectManifest struct{ Msg string }

func (InvalidRedkitProjectManifest) Code() string   { return "invalid-redkit-project-manifest" }
func (InvalidRedkitProjectManifest) Domain() Domain { return DomainProjectSystem }
func (InvalidRedkitProjectManifest) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k InvalidRedkitProjectManifest) Message() string {
	return "This REDkit project manifest is invalid: " + k.Msg
}

type ProjectDependencyPathNotFound struct{ DepPath string }

func (ProjectDependencyPathNotFound) Code() string   { return "project-dependency-path-not-found" }
func (ProjectDependencyPathNotFound) Domain() Domain { return DomainProjectSystem }
func (ProjectDependencyPathNotFound) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k ProjectDependencyPathNotFound) Message() string {
	return fmt.Sprintf("Dependency could not be found at path %q", k.DepPath)
}

type ProjectDependencyNameNotFound struct{ Name string }

func (ProjectDependencyNameNotFound) Code() string   { return "project-dependency-name-not-found" }
func (ProjectDependencyNameNotFound) Domain() Domain { return DomainProjectSystem }
func (ProjectDependencyNameNotFound) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k ProjectDependencyNameNotFound) Message() string {
	return fmt.Sprintf("Dependency %q could not be found in any of the repositories", k.Name)
}

type ProjectDependencyNameNotFoundAtPath struct{ Name string }

func (ProjectDependencyNameNotFoundAtPath) Code() string {
	return "project-dependency-name-not-found-at-path"
}
func (ProjectDependencyNameNotFoundAtPath) Domain() Domain { return DomainProjectSystem }
func (ProjectDependencyNameNotFoundAtPath) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k ProjectDependencyNameNotFoundAtPath) Message() string {
	return fmt.Sprintf("Content at the given path does not have the name %q", k.Name)
}

type MultipleMatchingProjectDependencies struct {
	Name          string
	MatchingPaths []abspath.Path
}

func (MultipleMatchingProjectDependencies) Code() string {
	return "multiple-matching-project-dependencies"
}
func (MultipleMatchingProjectDependencies) Domain() Domain { return DomainProjectSystem }
func (MultipleMatchingProjectDependencies) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k MultipleMatchingProjectDependencies) Message() string {
	paths := make([]string, len(k.MatchingPaths))
	for i, p := range k.MatchingPaths {
		paths[i] = p.String()
	}
	return fmt.Sprintf("Multiple contents match the dependency name %q: %s", k.Name, strings.Join(paths, ", "))
}

type ProjectSelfDependency struct{}

func (ProjectSelfDependency) Code() string   { return "project-self-dependency" }
func (ProjectSelfDependency) Domain() Domain { return DomainProjectSystem }
func (ProjectSelfDependency) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (ProjectSelfDependency) Message() string {
	return "A project cannot depend on itself"
}

// ---- syntax analysis ----

type MissingSyntax struct{ What string }

func (MissingSyntax) Code() string   { return "missing-syntax" }
func (MissingSyntax) Domain() Domain { return DomainSyntaxAnalysis }
func (MissingSyntax) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k MissingSyntax) Message() string {
	return "Syntax error: expected " + k.What
}

type InvalidSyntax struct{}

func (InvalidSyntax) Code() string   { return "invalid-syntax" }
func (InvalidSyntax) Domain() Domain { return DomainSyntaxAnalysis }
func (InvalidSyntax) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (InvalidSyntax) Message() string {
	return "Syntax error: invalid syntax"
}

// ---- contextual syntax analysis ----

type IncompatibleSpecifier struct {
	SpecName string
	SymName  string
}

func (IncompatibleSpecifier) Code() string   { return "incompatible-specifier" }
func (IncompatibleSpecifier) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (IncompatibleSpecifier) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k IncompatibleSpecifier) Message() string {
	return fmt.Sprintf("Specifier %q cannot be used for %s", k.SpecName, k.SymName)
}

type IncompatibleFunctionFlavour struct {
	FlavourName string
	SymName     string
}

func (IncompatibleFunctionFlavour) Code() string   { return "incompatible-function-flavour" }
func (IncompatibleFunctionFlavour) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (IncompatibleFunctionFlavour) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k IncompatibleFunctionFlavour) Message() string {
	return fmt.Sprintf("Keyword %q cannot be used for %s", k.FlavourName, k.SymName)
}

type RepeatedSpecifier struct{}

func (RepeatedSpecifier) Code() string   { return "repeated-specifier" }
func (RepeatedSpecifier) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (RepeatedSpecifier) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (RepeatedSpecifier) Message() string {
	return "Specifiers can not be repeated"
}

type MultipleAccessModifiers struct{}

func (MultipleAccessModifiers) Code() string   { return "multiple-access-modifiers" }
func (MultipleAccessModifiers) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (MultipleAccessModifiers) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (MultipleAccessModifiers) Message() string {
	return "Only one access modifier is allowed"
}

type InvalidAnnotation struct{}

func (InvalidAnnotation) Code() string   { return "invalid-annotation" }
func (InvalidAnnotation) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (InvalidAnnotation) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (InvalidAnnotation) Message() string {
	return "Unknown annotation"
}

type InvalidAnnotationPlacement struct{}

func (InvalidAnnotationPlacement) Code() string   { return "invalid-annotation-placement" }
func (InvalidAnnotationPlacement) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (InvalidAnnotationPlacement) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (InvalidAnnotationPlacement) Message() string {
	return "Annotations can only be used in the global scope"
}

type MissingAnnotationArgument struct{ Missing string }

func (MissingAnnotationArgument) Code() string   { return "missing-annotation-argument" }
func (MissingAnnotationArgument) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (MissingAnnotationArgument) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k MissingAnnotationArgument) Message() string {
	return fmt.Sprintf("This annotation requires an argument: %s", k.Missing)
}

type IncompatibleAnnotation struct {
	AnnotationName string
	ExpectedSym    string
}

func (IncompatibleAnnotation) Code() string   { return "incompatible-annotation" }
func (IncompatibleAnnotation) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (IncompatibleAnnotation) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k IncompatibleAnnotation) Message() string {
	return fmt.Sprintf("Annotation %q can only be used with %s", k.AnnotationName, k.ExpectedSym)
}

type GlobalScopeVarDecl struct{}

func (GlobalScopeVarDecl) Code() string   { return "global-scope-var-decl" }
func (GlobalScopeVarDecl) Domain() Domain { return DomainContextualSyntaxAnalysis }
func (GlobalScopeVarDecl) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (GlobalScopeVarDecl) Message() string {
	return "Variables cannot be declared in the global scope"
}

// ---- symbol analysis ----

type SymbolNameTaken struct {
	Name              string
	PrecursorFilePath *abspath.Path
	PrecursorRange    *protocol.Range
}

func (SymbolNameTaken) Code() string   { return "symbol-name-taken" }
func (SymbolNameTaken) Domain() Domain { return DomainSymbolAnalysis }
func (SymbolNameTaken) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k SymbolNameTaken) Message() string {
	return fmt.Sprintf("The name %q is defined multiple times", k.Name)
}
func (k SymbolNameTaken) Related() *RelatedInfo {
	if k.PrecursorFilePath == nil || k.PrecursorRange == nil {
		return nil
	}
	return &RelatedInfo{
		Path:    *k.PrecursorFilePath,
		Range:   *k.PrecursorRange,
		Message: fmt.Sprintf("Previous definition of %q", k.Name),
	}
}

type MissingTypeArg struct{}

func (MissingTypeArg) Code() string   { return "missing-type-arg" }
func (MissingTypeArg) Domain() Domain { return DomainSymbolAnalysis }
func (MissingTypeArg) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (MissingTypeArg) Message() string {
	return "Missing type argument"
}

type UnnecessaryTypeArg struct{}

func (UnnecessaryTypeArg) Code() string   { return "unnecessary-type-arg" }
func (UnnecessaryTypeArg) Domain() Domain { return DomainSymbolAnalysis }
func (UnnecessaryTypeArg) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (UnnecessaryTypeArg) Message() string {
	return "This type does not take a type argument"
}

// ---- workspace symbol analysis ----

type SymbolNameTakenInDependency struct {
	Name              string
	PrecursorFilePath *abspath.Path
	PrecursorRange    *protocol.Range
}

func (SymbolNameTakenInDependency) Code() string   { return "symbol-name-taken-in-dependency" }
func (SymbolNameTakenInDependency) Domain() Domain { return DomainWorkspaceSymbolAnalysis }
func (SymbolNameTakenInDependency) Severity() protocol.DiagnosticSeverity {
	return protocol.DiagnosticSeverityError
}
func (k SymbolNameTakenInDependency) Message() string {
	return fmt.Sprintf("The name %q is already defined in a dependency", k.Name)
}
func (k SymbolNameTakenInDependency) Related() *RelatedInfo {
	if k.PrecursorFilePath == nil || k.PrecursorRange == nil {
		return nil
	}
	return &RelatedInfo{
		Path:    *k.PrecursorFilePath,
		Range:   *k.PrecursorRange,
		Message: fmt.Sprintf("Previous definition of %q", k.Name),
	}
}
