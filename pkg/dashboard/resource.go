package dashboard

import "sync"

// State names one phase of a resource's fetch lifecycle.
type State string

const (
	// StateIdle marks a resource that has never been fetched.
	StateIdle State = "idle"
	// StateLoading marks a fetch in flight; prior data, if any, stays visible.
	StateLoading State = "loading"
	// StateLoaded marks a successful fetch whose data replaced any prior value.
	StateLoaded State = "loaded"
	// StateFailed marks a failed fetch; prior data, if any, stays visible.
	StateFailed State = "failed"
)

// Snapshot is a point-in-time copy of a resource's state.
type Snapshot[T any] struct {
	State        State
	Data         T
	HasData      bool
	ErrorMessage string
}

// Resource is an isolated async state machine for one fetched collection.
// Every fetch trigger obtains a sequence number from BeginFetch; completions
// carrying a superseded sequence are discarded, so the last trigger wins
// regardless of network completion order.
type Resource[T any] struct {
	mutex          sync.Mutex
	state          State
	data           T
	hasData        bool
	errorMessage   string
	latestSequence uint64
}

// NewResource constructs an idle resource.
func NewResource[T any]() *Resource[T] {
	return &Resource[T]{state: StateIdle}
}

// BeginFetch transitions to Loading, clears any surfaced error and returns the
// sequence number the eventual completion must present.
func (resource *Resource[T]) BeginFetch() uint64 {
	resource.mutex.Lock()
	defer resource.mutex.Unlock()

	resource.latestSequence++
	resource.state = StateLoading
	resource.errorMessage = ""
	return resource.latestSequence
}

// CompleteFetch installs fetched data when the sequence is still the latest.
// It reports whether the completion was applied.
func (resource *Resource[T]) CompleteFetch(sequence uint64, data T) bool {
	resource.mutex.Lock()
	defer resource.mutex.Unlock()

	if sequence != resource.latestSequence {
		return false
	}
	resource.data = data
	resource.hasData = true
	resource.state = StateLoaded
	resource.errorMessage = ""
	return true
}

// FailFetch records a failure when the sequence is still the latest. Data from
// a prior successful fetch is preserved. It reports whether the failure was applied.
func (resource *Resource[T]) FailFetch(sequence uint64, errorMessage string) bool {
	resource.mutex.Lock()
	defer resource.mutex.Unlock()

	if sequence != resource.latestSequence {
		return false
	}
	resource.state = StateFailed
	resource.errorMessage = errorMessage
	return true
}

// Snapshot returns a copy of the current state.
func (resource *Resource[T]) Snapshot() Snapshot[T] {
	resource.mutex.Lock()
	defer resource.mutex.Unlock()

	return Snapshot[T]{
		State:        resource.state,
		Data:         resource.data,
		HasData:      resource.hasData,
		ErrorMessage: resource.errorMessage,
	}
}
