package actorutil

import (
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/primetalk/goio/io"
)

// SafeBackgroundTask runs a blocking function off the actor goroutine
// and pipes the result back as a message. The actor stays responsive
// while a hub round trip is in flight.
type SafeBackgroundTask[T any] struct {
	ctx       actor.Context
	fn        func() (*T, error)
	timeout   *time.Duration
	recover   func(error) T
	onSuccess func(T)
}

func NewBackgroundTask[T any](ctx actor.Context, fn func() (*T, error)) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		ctx: ctx,
		fn:  fn,
	}
}

func NewBackgroundTaskNoError[T any](ctx actor.Context, fn func() *T) *SafeBackgroundTask[T] {
	return &SafeBackgroundTask[T]{
		ctx: ctx,
		fn: func() (*T, error) {
			return fn(), nil
		},
	}
}

func (t *SafeBackgroundTask[T]) WithTimeout(timeout time.Duration) *SafeBackgroundTask[T] {
	t.timeout = &timeout
	return t
}

// Recover maps a task error to a regular result message so the target
// actor only ever sees one message type.
func (t *SafeBackgroundTask[T]) Recover(fn func(error) T) *SafeBackgroundTask[T] {
	t.recover = fn
	return t
}

// TaskResult wraps a finished task together with the PID the outcome
// should be forwarded to once the owning actor leaves its waiting
// state.
type TaskResult struct {
	Message any
	ReplyTo *actor.PID
}

// PipeToWrapped sends the result to pid as a TaskResult carrying the
// original requester.
func (t *SafeBackgroundTask[T]) PipeToWrapped(pid *actor.PID, replyTo *actor.PID) {
	t.onSuccess = func(value T) {
		t.ctx.Send(pid, TaskResult{Message: value, ReplyTo: replyTo})
	}
	t.run()
}

func (t *SafeBackgroundTask[T]) PipeTo(pid *actor.PID) {
	t.onSuccess = func(value T) {
		t.ctx.Send(pid, value)
	}
	t.run()
}

func (t *SafeBackgroundTask[T]) run() {
	bgFn := io.Eval(t.fn)
	bg := io.Map(bgFn, func(a *T) T {
		if a != nil {
			return *a
		}
		panic(errors.New("result is nil"))
	})
	if t.timeout != nil {
		bg = io.WithTimeout[T](*t.timeout)(bg)
	}
	go func() {
		result := io.RunSync(bg)
		value := result.Value
		if result.Error != nil {
			if t.recover == nil {
				return
			}
			value = t.recover(result.Error)
		}
		if t.onSuccess != nil {
			t.onSuccess(value)
		}
	}()
}
