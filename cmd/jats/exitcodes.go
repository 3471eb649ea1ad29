package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config, unsupported version or style)
	ExitDataError   = 3 // Data error (malformed document or bibliography, export failure)
)
