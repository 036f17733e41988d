// Package chat is the terminal driver: it reads operator lines, runs them
// through the agent and prints replies.
package chat

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/agent"
	"github.com/vooagent/voo/internal/security"
)

// Conversation is the part of the agent the driver needs
type Conversation interface {
	Turn(ctx context.Context, input string) (*agent.Reply, error)
	Reset()
}

const resetCommand = "/reset"

// REPL is the read-eval-print loop
type REPL struct {
	conv      Conversation
	in        io.Reader
	printer   *Printer
	validator *security.InputValidator
}

func NewREPL(conv Conversation, in io.Reader, printer *Printer, validator *security.InputValidator) *REPL {
	if validator == nil {
		validator = security.NewInputValidator(0)
	}
	return &REPL{conv: conv, in: in, printer: printer, validator: validator}
}

// Run reads lines until EOF, an exit command or ctx is canceled. Cancelling
// ctx also aborts the turn in flight. Turn errors are printed and the loop
// keeps going; only a read failure is returned.
func (r *REPL) Run(ctx context.Context) error {
	lines, readErr := r.readLines(ctx)

	for {
		r.printer.Prompt()

		var line string
		select {
		case <-ctx.Done():
			r.bye()
			return nil
		case l, ok := <-lines:
			if !ok {
				r.bye()
				return <-readErr
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			r.printer.Notice("Bye!")
			return nil
		case resetCommand:
			r.conv.Reset()
			r.printer.Notice("conversation cleared")
			continue
		}

		if res := r.validator.Validate(line); !res.Valid {
			r.printer.Error(errors.New(res.Message))
			continue
		}

		reply, err := r.conv.Turn(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				r.bye()
				return nil
			}
			log.Debug().Err(err).Msg("turn returned error")
			r.printer.Error(err)
			continue
		}
		r.printer.Reply(reply.Text)
	}
}

// bye ends the prompt line left open by EOF or an interrupt
func (r *REPL) bye() {
	r.printer.Notice("\nBye!")
}

// readLines scans input on its own goroutine so the loop can also watch ctx.
// The goroutine exits once input ends or ctx is done.
func (r *REPL) readLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
