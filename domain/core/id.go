package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID         ID
	ParticipantID ID
)

// StatementID is the numeric statement identifier ("tid") used by the vote data.
type StatementID int

// String conversions for domain IDs
func (id RunID) String() string         { return ID(id).String() }
func (id ParticipantID) String() string { return ID(id).String() }
func (id StatementID) String() string   { return strconv.Itoa(int(id)) }

// IsEmpty reports whether the participant ID carries no value
func (id ParticipantID) IsEmpty() bool { return ID(id).IsEmpty() }

// NewRunID creates a time-ordered identifier for one analysis run
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseParticipantID parses a string into ParticipantID
func ParseParticipantID(s string) (ParticipantID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("participant ID cannot be empty")
	}
	return ParticipantID(strings.TrimSpace(s)), nil
}

// ParseStatementID parses the textual form stored by the vote database ("17")
func ParseStatementID(s string) (StatementID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("statement ID cannot be empty")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		// Exports sometimes write integral floats ("17.0")
		f, ferr := strconv.ParseFloat(trimmed, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid statement ID %q", s)
		}
		n = int(f)
	}
	return StatementID(n), nil
}
