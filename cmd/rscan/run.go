package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/rscan/internal/engine"
)

// startFunc launches one engine operation and reports its id.
type startFunc func(eng *engine.Engine) (uint64, error)

// runOperation builds a single-use engine whose events feed handle on the
// calling goroutine. Cancelling the command context cancels the operation;
// the function returns once the operation has fully stopped.
func runOperation(cmd *cobra.Command, start startFunc, handle func(engine.Event) error) (cancelled bool, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return false, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return false, err
	}

	events := make(chan engine.Event, 64)
	sink := engine.SinkFunc(func(ev engine.Event) error {
		events <- ev
		return nil
	})
	eng := engine.New(cfg, sink, engine.WithLogger(logger))

	id, err := start(eng)
	if err != nil {
		return false, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if id != 0 {
				eng.Cancel(id)
			}
		case <-stopped:
		}
	}()
	go func() {
		eng.Wait()
		close(events)
	}()

	var handleErr error
	for ev := range events {
		if handleErr != nil {
			continue
		}
		if err := handle(ev); err != nil {
			handleErr = err
			eng.Cancel(id)
		}
	}
	close(stopped)

	return ctx.Err() != nil, handleErr
}
