package logger

// Standard field names for consistent structured logging across the server.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"

	// Workspace
	FieldContent     = "content"
	FieldContentPath = "content_path"
	FieldScriptsRoot = "scripts_root"

	// Scripts
	FieldPath      = "path"
	FieldLocalPath = "local_path"

	// Symbols
	FieldSymbolPath = "symbol_path"
	FieldSymbolKind = "symbol_kind"

	// Timing and progress
	FieldDuration = "duration"
	FieldCount    = "count"

	// Errors
	FieldError = "error"
)
