package cql

import "strings"

// Request error codes of the CQL native protocol shared by both driver
// generations.
const (
	CodeUnavailable  = 0x1000
	CodeWriteTimeout = 0x1100
	CodeReadTimeout  = 0x1200
	CodeSyntax       = 0x2000
	CodeInvalid      = 0x2200
	CodeConfig       = 0x2300
)

// missingSchemaMarkers are the server messages of invalid requests that name
// an unknown keyspace or table. The protocol reports these with the generic
// invalid code, so the message is the only discriminator.
var missingSchemaMarkers = []string{
	"keyspace",
	"unconfigured table",
	"unconfigured columnfamily",
}

// IsMissingSchema reports whether an invalid-request message refers to a
// keyspace or table that is not loaded.
//
// Parameters:
//   - msg: Server error message
//
// Returns:
//   - bool: true if the message names a missing keyspace or table
func IsMissingSchema(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range missingSchemaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// IsInvalidCode reports whether a request error code means the statement was
// rejected as malformed.
func IsInvalidCode(code int) bool {
	return code == CodeSyntax || code == CodeInvalid || code == CodeConfig
}
