package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type runFunc func(ctx context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunSessionWaitsForInspectorShutdown(t *testing.T) {
	var drained atomic.Bool
	inspector := runFunc(func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		drained.Store(true)
		return nil
	})
	repl := runFunc(func(ctx context.Context) error { return nil })

	assert.NoError(t, runSession(context.Background(), repl, inspector, "127.0.0.1:0"))
	assert.True(t, drained.Load(), "inspector finished before runSession returned")
}

func TestRunSessionInspectorFailureKeepsChat(t *testing.T) {
	inspector := runFunc(func(ctx context.Context) error { return errors.New("address in use") })
	repl := runFunc(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return errors.New("repl cancelled by inspector failure")
		case <-time.After(30 * time.Millisecond):
			return nil
		}
	})

	assert.NoError(t, runSession(context.Background(), repl, inspector, "127.0.0.1:0"))
}

func TestRunSessionReturnsREPLError(t *testing.T) {
	want := errors.New("stdin closed badly")
	repl := runFunc(func(ctx context.Context) error { return want })

	assert.ErrorIs(t, runSession(context.Background(), repl, nil, ""), want)
}
