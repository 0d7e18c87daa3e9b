package lib

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewID generates a UUID version 4 string (RFC 4122)
func NewID() string {
	return uuid.NewString()
}

// DiscardLogger returns a logger that drops everything. Components fall back
// to it when no logger is configured.
func DiscardLogger(prefix string) *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Prefix: prefix})
}
