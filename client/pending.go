package client

import (
	"sync"

	"github.com/google/uuid"
)

// OpState is the lifecycle of an optimistic operation. Pending moves to exactly one of the others.
type OpState int

const (
	OpPending OpState = iota
	OpConfirmed
	OpFailed
)

func (s OpState) String() string {
	switch s {
	case OpPending:
		return "pending"
	case OpConfirmed:
		return "confirmed"
	case OpFailed:
		return "failed"
	}
	return "unknown"
}

// Op tracks one optimistic write: a provisional value shown immediately,
// then either the authoritative value or the error.
type Op[T any] struct {
	mu     sync.Mutex
	tempID string
	state  OpState
	value  T
	err    error
}

func NewOp[T any](provisional T) *Op[T] {
	return &Op[T]{tempID: "temp-" + uuid.NewString(), value: provisional}
}

func (o *Op[T]) TempID() string { return o.tempID }

// Confirm settles a pending op with the authoritative value. It reports false if already settled.
func (o *Op[T]) Confirm(v T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != OpPending {
		return false
	}
	o.state, o.value = OpConfirmed, v
	return true
}

func (o *Op[T]) Fail(err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != OpPending {
		return false
	}
	o.state, o.err = OpFailed, err
	return true
}

func (o *Op[T]) State() OpState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the current value (provisional while pending) and the failure, if any.
func (o *Op[T]) Result() (T, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value, o.err
}
