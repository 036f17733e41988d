package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/tools"
	"golang.org/x/sync/errgroup"
)

// prepareCalls copies the model's requests so later mutation by the client
// cannot reach the transcript, and fills in missing correlation IDs.
func prepareCalls(calls []models.ToolCallRequest) []models.ToolCallRequest {
	out := make([]models.ToolCallRequest, len(calls))
	for i, call := range calls {
		c := call.Clone()
		if c.ID == "" {
			c.ID = "call_" + uuid.NewString()
		}
		if c.Arguments == nil {
			c.Arguments = map[string]any{}
		}
		out[i] = c
	}
	return out
}

// dispatch runs every call of one round concurrently. results[i] always
// belongs to calls[i]. It fails only when ctx is done, in which case the
// round must be discarded.
func (a *Agent) dispatch(ctx context.Context, calls []models.ToolCallRequest) ([]models.ToolResult, error) {
	results := make([]models.ToolResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.ToolConcurrency)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = a.invoke(gctx, call)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// invoke resolves and runs a single call. It never fails: every outcome,
// including an unregistered name, becomes a result.
func (a *Agent) invoke(ctx context.Context, call models.ToolCallRequest) models.ToolResult {
	start := time.Now()

	var res models.ToolResult
	if tool, ok := a.registry.Resolve(call.Name); !ok {
		res = models.Failed(models.FailureUnknownTool, "no tool named %q is registered", call.Name)
	} else if err := tools.ValidateArgs(tool.Describe(), call.Arguments); err != nil {
		res = models.Failed(models.FailureInvalidArgument, "%v", err)
	} else {
		res = a.execute(ctx, tool, call)
	}

	res.CallID = call.ID
	res.Name = call.Name
	res.DurationMs = time.Since(start).Milliseconds()
	if !res.Success && res.Failure == "" {
		res.Failure = models.FailureInternal
	}

	log.Debug().
		Str("tool", call.Name).
		Str("call_id", call.ID).
		Bool("success", res.Success).
		Str("failure", string(res.Failure)).
		Int64("duration_ms", res.DurationMs).
		Msg("tool call finished")
	return res
}

// execute runs the tool under the per-tool timeout and turns a panic into an
// internal failure.
func (a *Agent) execute(ctx context.Context, tool tools.Tool, call models.ToolCallRequest) models.ToolResult {
	tctx, cancel := context.WithTimeout(ctx, a.cfg.ToolTimeout)
	defer cancel()

	done := make(chan models.ToolResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("tool", call.Name).
					Str("call_id", call.ID).
					Msg("tool panicked")
				done <- models.Failed(models.FailureInternal, "tool %s panicked: %v", call.Name, r)
			}
		}()
		done <- tool.Execute(tctx, call.Arguments)
	}()

	select {
	case res := <-done:
		return res
	case <-tctx.Done():
		if ctx.Err() != nil {
			return models.Failed(models.FailureInternal, "tool %s canceled", call.Name)
		}
		return models.Failed(models.FailureInternal, "tool %s timed out after %s", call.Name, a.cfg.ToolTimeout)
	}
}
