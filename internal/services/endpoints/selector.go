package endpoints

import (
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/Jitesh17/docai/internal/common"
	"github.com/Jitesh17/docai/internal/interfaces"
)

// Selector switches between the local development endpoint and the hosted
// production endpoint. Exactly one is active at a time. Toggling does no
// I/O; dependents holding endpoint-derived state must refresh against the
// new base URL and discard results fetched against the old one.
type Selector struct {
	mu     sync.RWMutex
	local  string
	hosted string
	active string // "local" or "hosted"
	epoch  uint64
	logger arbor.ILogger
}

// NewSelector creates an endpoint selector from configuration
func NewSelector(config *common.EndpointConfig, logger arbor.ILogger) *Selector {
	active := strings.ToLower(strings.TrimSpace(config.Active))
	if active != "hosted" {
		active = "local"
	}
	return &Selector{
		local:  strings.TrimRight(config.Local, "/"),
		hosted: strings.TrimRight(config.Hosted, "/"),
		active: active,
		logger: logger,
	}
}

// Current returns the active base URL
func (s *Selector) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "hosted" {
		return s.hosted
	}
	return s.local
}

// Name returns the label of the active endpoint
func (s *Selector) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Toggle switches to the other endpoint and bumps the epoch so in-flight
// results against the previous endpoint are recognizable as stale.
func (s *Selector) Toggle() string {
	s.mu.Lock()
	if s.active == "hosted" {
		s.active = "local"
	} else {
		s.active = "hosted"
	}
	s.epoch++
	name, url := s.active, s.local
	if s.active == "hosted" {
		url = s.hosted
	}
	s.mu.Unlock()

	s.logger.Info().Str("endpoint", name).Str("base_url", url).Msg("Switched backend endpoint")
	return url
}

// Epoch returns the current toggle epoch
func (s *Selector) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

var _ interfaces.EndpointSelector = (*Selector)(nil)
