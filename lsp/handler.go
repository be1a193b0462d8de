// Package lsp adapts the workspace query surface to the Language Server
// Protocol.
package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/teranos/witcherscript-ls/abspath"
	"github.com/teranos/witcherscript-ls/workspace"
)

// Handler implements the LSP protocol handlers over a workspace.
type Handler struct {
	ws     *workspace.Workspace
	logger *zap.SugaredLogger

	name    string
	version string
}

func NewHandler(ws *workspace.Workspace, logger *zap.SugaredLogger, name, version string) *Handler {
	return &Handler{ws: ws, logger: logger, name: name, version: version}
}

// Initialize handles the LSP initialize request: it logs the client and
// returns the server capabilities. The client's workspace folders are not
// read; workspace and repository roots both come from server configuration.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.logger.Infow("LSP client initializing",
		"client", clientName(params),
	)

	capabilities := protocol.ServerCapabilities{
		DefinitionProvider:     true,
		TypeDefinitionProvider: true,
		HoverProvider:          &protocol.HoverOptions{},
		DocumentSymbolProvider: true,
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    textDocSyncPtr(protocol.TextDocumentSyncKindNone),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    h.name,
			Version: &h.version,
		},
	}, nil
}

// Initialized triggers the initial workspace analysis.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	go func() {
		if _, err := h.ws.Rebuild(context.Background()); err != nil {
			h.logger.Errorw("Initial workspace analysis failed", "error", err)
			return
		}
		h.publishDiagnostics(ctx)
	}()
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	h.logger.Infow("LSP client shutting down")
	return nil
}

// TextDocumentDidSave reanalyzes the saved script and republishes
// diagnostics. Document synchronization is save-based: the analysis reads
// from disk, matching the whole-file granularity of the core.
func (h *Handler) TextDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := abspath.FromURI(string(params.TextDocument.URI))
	if err != nil {
		return nil
	}
	h.ws.OnFileChanged(path)
	h.publishDiagnostics(ctx)
	return nil
}

// TextDocumentDefinition resolves go-to-definition.
func (h *Handler) TextDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, err := abspath.FromURI(string(params.TextDocument.URI))
	if err != nil {
		return nil, nil
	}

	sympathAt, ok := h.ws.ResolveSymbolAtPosition(path, params.Position)
	if !ok {
		return nil, nil
	}
	loc, ok := h.ws.LocateSymbol(path, sympathAt)
	if !ok {
		return nil, nil
	}

	return protocol.Location{
		URI:   protocol.DocumentUri(loc.AbsSourcePath.URI()),
		Range: loc.LabelRange,
	}, nil
}

// TextDocumentTypeDefinition resolves the type of the symbol under the
// cursor and navigates to the type's declaration.
func (h *Handler) TextDocumentTypeDefinition(ctx *glsp.Context, params *protocol.TypeDefinitionParams) (any, error) {
	path, err := abspath.FromURI(string(params.TextDocument.URI))
	if err != nil {
		return nil, nil
	}

	sympathAt, ok := h.ws.ResolveSymbolAtPosition(path, params.Position)
	if !ok {
		return nil, nil
	}
	typePath, ok := h.ws.ProduceType(path, sympathAt)
	if !ok {
		return nil, nil
	}
	loc, ok := h.ws.LocateSymbol(path, typePath)
	if !ok {
		return nil, nil
	}

	return protocol.Location{
		URI:   protocol.DocumentUri(loc.AbsSourcePath.URI()),
		Range: loc.LabelRange,
	}, nil
}

// TextDocumentHover renders the symbol under the cursor.
func (h *Handler) TextDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := abspath.FromURI(string(params.TextDocument.URI))
	if err != nil {
		return nil, nil
	}

	rendered, ok := h.ws.Hover(path, params.Position)
	if !ok {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "```witcherscript\n" + rendered + "\n```",
		},
	}, nil
}

// TextDocumentDocumentSymbol returns the outline of one script.
func (h *Handler) TextDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := abspath.FromURI(string(params.TextDocument.URI))
	if err != nil {
		return nil, nil
	}
	return h.ws.DocumentSymbols(path), nil
}

// publishDiagnostics pushes the current diagnostics of every file to the
// client.
func (h *Handler) publishDiagnostics(ctx *glsp.Context) {
	for path, diags := range h.ws.Diagnostics() {
		lspDiags := make([]protocol.Diagnostic, len(diags))
		for i, d := range diags {
			lspDiags[i] = d.ToLSP()
		}
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI: protocol.DocumentUri(path.URI()),
			Diagnostics: lspDiags,
		})
	}
}

func clientName(params *protocol.InitializeParams) string {
	if params.ClientInfo != nil {
		return params.ClientInfo.Name
	}
	return "unknown"
}

func boolPtr(b bool) *bool {
	return &b
}

func textDocSyncPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
