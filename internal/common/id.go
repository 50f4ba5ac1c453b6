package common

import (
	"github.com/google/uuid"
)

// NewExchangeID generates a unique exchange ID with the "exch_" prefix
// Format: exch_<uuid>
func NewExchangeID() string {
	return "exch_" + uuid.New().String()
}

// NewRequestID generates a correlation ID for outgoing backend requests
// Format: req_<uuid>
func NewRequestID() string {
	return "req_" + uuid.New().String()
}
