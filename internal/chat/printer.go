package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/vooagent/voo/internal/agent"
	"github.com/vooagent/voo/internal/models"
	"github.com/vooagent/voo/internal/security"
)

type styles struct {
	enabled bool
	prompt  lipgloss.Style
	agent   lipgloss.Style
	tool    lipgloss.Style
	failed  lipgloss.Style
	err     lipgloss.Style
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func newStyles(color bool) styles {
	return styles{
		enabled: color,
		prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		agent:   lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		tool:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Printer renders the conversation to the terminal. It is safe for use from
// the agent hooks and the read loop at the same time.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	name     string
	version  string
	styles   styles
	redactor *security.Redactor
}

func NewPrinter(out io.Writer, name, version string, color bool) *Printer {
	return &Printer{
		out:      out,
		name:     name,
		version:  version,
		styles:   newStyles(color),
		redactor: security.NewRedactor(nil),
	}
}

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Prompt() {
	p.printf("%s", p.styles.render(p.styles.prompt, "YOU:")+" ")
}

// Reply prints "NAME:VERSION> text"
func (p *Printer) Reply(text string) {
	p.printf("%s %s\n", p.styles.render(p.styles.agent, p.name+":"+p.version+">"), text)
}

func (p *Printer) Error(err error) {
	p.printf("%s %s\n", p.styles.render(p.styles.err, "error:"), models.FormatUserMessage(err))
}

func (p *Printer) Notice(msg string) {
	p.printf("%s\n", msg)
}

func (p *Printer) ToolCall(call models.ToolCallRequest) {
	args, err := json.Marshal(p.redactor.RedactArgs(call.Arguments))
	if err != nil {
		args = []byte("{}")
	}
	p.printf("%s\n", p.styles.render(p.styles.tool, fmt.Sprintf("  [tool] %s %s", call.Name, args)))
}

func (p *Printer) ToolResult(res models.ToolResult) {
	if res.Success {
		p.printf("%s\n", p.styles.render(p.styles.tool, fmt.Sprintf("  [tool] %s ok (%dms)", res.Name, res.DurationMs)))
		return
	}
	msg := strings.SplitN(res.Error, "\n", 2)[0]
	p.printf("%s\n", p.styles.render(p.styles.failed, fmt.Sprintf("  [tool] %s failed (%s): %s", res.Name, res.Failure, msg)))
}

// Hooks wires tool activity into the agent.
func (p *Printer) Hooks() agent.Hooks {
	return agent.Hooks{
		OnToolCall:   p.ToolCall,
		OnToolResult: p.ToolResult,
	}
}
