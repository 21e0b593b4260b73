package session

import (
	"github.com/google/uuid"
)

// NewID returns a random session ID. MCP requires session IDs to be globally
// unique and to contain only visible ASCII, which a UUID satisfies.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that id has the shape produced by NewID.
func ValidateID(id string) error {
	if id == "" {
		return newInvalidError("empty session ID", nil)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return newInvalidError("malformed session ID", err)
	}
	if parsed.String() != id {
		return newInvalidError("non-canonical session ID", nil)
	}
	return nil
}
