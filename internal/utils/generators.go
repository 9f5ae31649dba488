package utils

import (
	"github.com/google/uuid"
)

// NewID returns a random UUID v4 string, used for all entity identifiers.
func NewID() string {
	return uuid.New().String()
}
