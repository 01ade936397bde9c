package ir

// Version constants for the recorder and its database layout.
const (
	// LayoutVersion identifies the table layout written by this module.
	// Bump it when a table or column changes.
	LayoutVersion = "1"

	// Version is the hitdata release version.
	Version = "0.1.0"
)
