package interfaces

// EndpointSelector holds which of the two known backend base URLs is
// active. Toggling performs no I/O; it bumps the epoch so that in-flight
// results fetched against the previous endpoint can be discarded instead of
// merged.
type EndpointSelector interface {
	// Current returns the active base URL.
	Current() string

	// Name returns the label of the active endpoint ("local" or "hosted").
	Name() string

	// Toggle switches to the other endpoint and returns the new base URL.
	Toggle() string

	// Epoch increments on every toggle. Callers capture it before a fetch
	// and drop the result if it changed underneath them.
	Epoch() uint64
}
