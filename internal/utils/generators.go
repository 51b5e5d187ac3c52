package utils

import (
	"github.com/google/uuid"
)

// GenerateRequestID returns a random id for request correlation.
func GenerateRequestID() string {
	return uuid.NewString()
}
