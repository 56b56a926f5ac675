package connectors

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/squashedelephant/connectors/types"
)

// formatRow coerces every column whose name ends with suffix to its
// canonical UUID string. Other columns pass through unchanged.
func formatRow(row map[string]any, suffix string) types.Record {
	for name, v := range row {
		if strings.HasSuffix(name, suffix) {
			row[name] = uuidString(v)
		}
	}

	return row
}

// uuidString returns the string form of a UUID-typed value; nil stays nil.
func uuidString(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		if u, err := uuid.FromBytes(t); err == nil {
			return u.String()
		}

		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
