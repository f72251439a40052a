package ir

// Version constants for the request model and compiler.
const (
	// IRVersion is the request model version. It is mixed into request
	// hashes so cached queries are invalidated when the model changes.
	IRVersion = "1"

	// CompilerVersion is the sparqlc compiler version.
	CompilerVersion = "0.1.0"
)
