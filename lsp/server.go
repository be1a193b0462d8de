package lsp

import (
	"github.com/tliron/glsp/server"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/teranos/witcherscript-ls/workspace"
)

// ServerName identifies this language server to clients.
const ServerName = "witcherscript-ls"

// Serve runs the language server over stdio until the client disconnects.
func Serve(ws *workspace.Workspace, logger *zap.SugaredLogger, version string, debug bool) error {
	handler := NewHandler(ws, logger, ServerName, version)

	protocolHandler := protocol.Handler{
		Initialize:                 handler.Initialize,
		Initialized:                handler.Initialized,
		Shutdown:                   handler.Shutdown,
		TextDocumentDidSave:        handler.TextDocumentDidSave,
		TextDocumentDefinition:     handler.TextDocumentDefinition,
		TextDocumentTypeDefinition: handler.TextDocumentTypeDefinition,
		TextDocumentHover:          handler.TextDocumentHover,
		TextDocumentDocumentSymbol: handler.TextDocumentDocumentSymbol,
	}

	glspServer := server.NewServer(&protocolHandler, ServerName, debug)

	logger.Infow("Serving LSP over stdio")
	return glspServer.RunStdio()
}
