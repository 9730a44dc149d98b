package detail

import (
	"sync"

	"docrepo/internal/domain"
)

// flow is the busy flag and outcome of one kind of mutation. A flow stays
// running until the reload that follows a success has finished.
type flow struct {
	mu    sync.Mutex
	state domain.FlowState
	err   error
}

func (f *flow) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == domain.FlowRunning {
		return false
	}
	f.state = domain.FlowRunning
	f.err = nil
	return true
}

func (f *flow) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if err != nil {
		f.state = domain.FlowFailed
		return
	}
	f.state = domain.FlowSucceeded
}

// State returns the flow's current state.
func (f *flow) State() domain.FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == "" {
		return domain.FlowIdle
	}
	return f.state
}

// Busy reports whether the flow is running; the matching submit control
// should be disabled.
func (f *flow) Busy() bool {
	return f.State() == domain.FlowRunning
}

// Err returns the last failure, or nil.
func (f *flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// UploadFlow tracks uploading a new version.
type UploadFlow struct {
	flow
}

// SaveFlow tracks saving metadata.
type SaveFlow struct {
	flow
}
