// Package agent runs the conversation loop: it keeps the transcript, sends it
// to the model, executes requested tools and feeds their results back until
// the model answers in plain text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/security"
	"github.com/vooagent/voo/internal/tools"
)

const (
	DefaultMaxRounds       = 10
	DefaultModelTimeout    = 60 * time.Second
	DefaultToolTimeout     = 30 * time.Second
	DefaultToolConcurrency = 4
)

// Hooks observe tool activity. They are called on the goroutine running the
// turn, in request order.
type Hooks struct {
	OnToolCall   func(call models.ToolCallRequest)
	OnToolResult func(result models.ToolResult)
}

// Config tunes the loop. Zero values fall back to the defaults above.
type Config struct {
	SystemPrompt    string
	SessionID       string
	MaxRounds       int
	ModelTimeout    time.Duration
	ToolTimeout     time.Duration
	ToolConcurrency int
	Retry           Policy
	Hooks           Hooks
	Audit           *security.AuditLogger
}

// Reply is the outcome of a successful turn.
type Reply struct {
	Text      string       `json:"text"`
	Rounds    int          `json:"rounds"`
	ToolsUsed []string     `json:"tools_used"`
	Usage     models.Usage `json:"usage"`
}

// Agent owns one conversation. Turns are serialised; Transcript may be called
// from any goroutine.
type Agent struct {
	client   ModelClient
	registry *tools.Registry
	cfg      Config
	history  *history

	mu sync.Mutex // held for the whole of a turn
}

func New(client ModelClient, registry *tools.Registry, cfg Config) (*Agent, error) {
	if client == nil {
		return nil, errors.New("agent: model client is nil")
	}
	if registry == nil {
		return nil, errors.New("agent: tool registry is nil")
	}
	if cfg.MaxRounds < 0 || cfg.ToolConcurrency < 0 || cfg.ModelTimeout < 0 || cfg.ToolTimeout < 0 {
		return nil, errors.New("agent: limits must not be negative")
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.ModelTimeout == 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}
	if cfg.ToolTimeout == 0 {
		cfg.ToolTimeout = DefaultToolTimeout
	}
	if cfg.ToolConcurrency == 0 {
		cfg.ToolConcurrency = DefaultToolConcurrency
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultPolicy()
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Audit == nil {
		cfg.Audit = security.NewAuditLogger(false, nil)
	}

	return &Agent{
		client:   client,
		registry: registry,
		cfg:      cfg,
		history:  newHistory(cfg.SessionID, cfg.SystemPrompt),
	}, nil
}

// SessionID identifies the current conversation. It changes on Reset.
func (a *Agent) SessionID() string {
	return a.history.sessionID()
}

func (a *Agent) Provider() string {
	return a.client.Name()
}

// Transcript returns a deep copy of the conversation so far.
func (a *Agent) Transcript() models.Transcript {
	return a.history.snapshot()
}

// Descriptors lists the tools advertised to the model.
func (a *Agent) Descriptors() []models.ToolDescriptor {
	return a.registry.Descriptors()
}

// Reset ends the current session and starts a new one with an empty
// transcript and the same system prompt. It waits for a running turn to
// finish.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev := a.history.sessionID()
	a.history.reset(uuid.NewString())
	log.Info().
		Str("previous_session_id", prev).
		Str("session_id", a.history.sessionID()).
		Msg("session reset")
}

// Turn processes one line of operator input and returns the model's final
// text answer. Whitespace-only input fails with ErrEmptyInput and leaves the
// transcript untouched. On failure, turns from completed rounds remain.
func (a *Agent) Turn(ctx context.Context, input string) (*Reply, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	session := a.history.sessionID()
	start := time.Now()
	reply, rounds, used, err := a.run(ctx, session, input)
	a.cfg.Audit.LogTurn(session, input, rounds, used, time.Since(start).Milliseconds(), err)

	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", session).
			Int("rounds", rounds).
			Msg("turn failed")
		return nil, err
	}
	log.Info().
		Str("session_id", session).
		Int("rounds", reply.Rounds).
		Strs("tools_used", reply.ToolsUsed).
		Int64("input_tokens", reply.Usage.InputTokens).
		Int64("output_tokens", reply.Usage.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("turn completed")
	return reply, nil
}

func (a *Agent) run(ctx context.Context, session, input string) (*Reply, int, []string, error) {
	a.history.append(models.NewUserTurn(input))

	descriptors := a.registry.Descriptors()
	used := []string{}
	var usage models.Usage

	for round := 1; round <= a.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, round - 1, used, err
		}

		mr, err := a.complete(ctx, a.history.snapshot(), descriptors)
		if err != nil {
			return nil, round - 1, used, err
		}
		usage.InputTokens += mr.Usage.InputTokens
		usage.OutputTokens += mr.Usage.OutputTokens

		log.Debug().
			Int("round", round).
			Int("tool_calls", len(mr.ToolCalls)).
			Int("text_len", len(mr.Text)).
			Msg("model replied")

		if !mr.HasToolCalls() {
			a.history.append(models.NewAgentTurn(mr.Text, nil))
			return &Reply{Text: mr.Text, Rounds: round, ToolsUsed: used, Usage: usage}, round, used, nil
		}

		calls := prepareCalls(mr.ToolCalls)
		if a.cfg.Hooks.OnToolCall != nil {
			for _, call := range calls {
				a.cfg.Hooks.OnToolCall(call)
			}
		}

		results, err := a.dispatch(ctx, calls)
		if err != nil {
			return nil, round - 1, used, err
		}

		turns := make([]models.Turn, 0, len(calls)+1)
		turns = append(turns, models.NewAgentTurn(mr.Text, calls))
		for i, res := range results {
			turns = append(turns, models.NewToolResultTurn(res))
			used = append(used, res.Name)
			a.cfg.Audit.LogToolCall(session, res.CallID, res.Name, calls[i].Arguments,
				res.Success, string(res.Failure), res.DurationMs)
		}
		a.history.append(turns...)

		if a.cfg.Hooks.OnToolResult != nil {
			for _, res := range results {
				a.cfg.Hooks.OnToolResult(res)
			}
		}
	}

	return nil, a.cfg.MaxRounds, used, &RoundLimitError{Limit: a.cfg.MaxRounds, ToolsUsed: used}
}

// complete calls the model with retries. Every attempt gets its own deadline;
// hitting it is reported as a retryable timeout.
func (a *Agent) complete(ctx context.Context, t models.Transcript, descriptors []models.ToolDescriptor) (models.ModelReply, error) {
	return Do(ctx, a.cfg.Retry, func(attempt int) (models.ModelReply, error) {
		callCtx, cancel := context.WithTimeout(ctx, a.cfg.ModelTimeout)
		defer cancel()

		reply, err := a.client.Complete(callCtx, t, descriptors)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			return models.ModelReply{}, ctx.Err()
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && models.KindOf(err) != models.KindTimeout {
			return models.ModelReply{}, &models.ModelError{
				Kind:     models.KindTimeout,
				Provider: a.client.Name(),
				Message:  fmt.Sprintf("no reply within %s", a.cfg.ModelTimeout),
				Err:      err,
			}
		}

		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Str("kind", string(models.KindOf(err))).
			Msg("model call failed")
		return models.ModelReply{}, err
	})
}
