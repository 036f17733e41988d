package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/agent"
	"github.com/vooagent/voo/internal/chat"
	"github.com/vooagent/voo/internal/config"
	"github.com/vooagent/voo/internal/security"
	"github.com/vooagent/voo/internal/server"
	"github.com/vooagent/voo/internal/service"
	"github.com/vooagent/voo/internal/tools"
	"golang.org/x/sync/errgroup"
)

const agentName = "VOO"

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	guard, err := security.NewPathGuard(cfg.WorkspaceRoot)
	if err != nil {
		return err
	}
	registry := tools.NewRegistry()
	if err := tools.RegisterBuiltins(registry, guard, cfg.MaxFileBytes); err != nil {
		return err
	}

	client, err := service.NewModelClient(ctx, service.ClientConfig{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return err
	}

	printer := chat.NewPrinter(os.Stdout, agentName, version, isatty.IsTerminal(os.Stdout.Fd()))

	a, err := agent.New(client, registry, agent.Config{
		SystemPrompt:    cfg.SystemPrompt,
		MaxRounds:       cfg.MaxRounds,
		ModelTimeout:    cfg.ModelTimeoutDuration(),
		ToolTimeout:     cfg.ToolTimeoutDuration(),
		ToolConcurrency: cfg.ToolConcurrency,
		Retry: agent.Policy{
			MaxAttempts:  cfg.MaxRetries + 1,
			InitialDelay: cfg.RetryBaseDelay(),
			MaxDelay:     agent.DefaultMaxRetryDelay,
			Multiplier:   2,
			Jitter:       true,
		},
		Hooks: printer.Hooks(),
		Audit: security.NewAuditLogger(cfg.AuditLogging, security.NewRedactor(config.DefaultSensitiveKeys)),
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("session_id", a.SessionID()).
		Str("provider", a.Provider()).
		Strs("tools", registry.Names()).
		Str("workspace_root", guard.Root()).
		Msg("agent ready")

	var inspector runner
	if cfg.InspectorAddr != "" {
		srv, err := server.New(server.Config{
			Addr:    cfg.InspectorAddr,
			Token:   cfg.InspectorToken,
			Version: version,
		}, a)
		if err != nil {
			return err
		}
		inspector = srv
	}

	repl := chat.NewREPL(a, os.Stdin, printer, security.NewInputValidator(cfg.MaxInputLength))
	return runSession(ctx, repl, inspector, cfg.InspectorAddr)
}

type runner interface {
	Run(ctx context.Context) error
}

// runSession runs the REPL and, when set, the inspector. The REPL owns the
// process lifetime: leaving it cancels the inspector, and runSession returns
// only after the inspector has shut down.
func runSession(ctx context.Context, repl, inspector runner, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	if inspector != nil {
		g.Go(func() error {
			// a dead inspector is logged, the chat keeps going
			if err := inspector.Run(ctx); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("inspector stopped")
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return repl.Run(ctx)
	})
	return g.Wait()
}

// setupLogging sends logs to stderr so they never mix with the chat on stdout.
func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
