// Package tools defines the Tool capability, the registry the agent resolves
// tool calls against, and the built-in filesystem tools.
package tools

import (
	"context"

	"github.com/vooagent/voo/internal/models"
)

// Tool is a named, schema-described unit of work the model may request.
// Expected failures are reported as failure results, not panics.
type Tool interface {
	Describe() models.ToolDescriptor
	Execute(ctx context.Context, args map[string]any) models.ToolResult
}

// Func adapts a plain function into a Tool
type Func struct {
	Name        string
	Description string
	Parameters  []models.Parameter
	Run         func(ctx context.Context, args map[string]any) models.ToolResult
}

func (f *Func) Describe() models.ToolDescriptor {
	params := make([]models.Parameter, len(f.Parameters))
	copy(params, f.Parameters)
	return models.ToolDescriptor{
		Name:        f.Name,
		Description: f.Description,
		Parameters:  params,
	}
}

func (f *Func) Execute(ctx context.Context, args map[string]any) models.ToolResult {
	if f.Run == nil {
		return models.Failed(models.FailureInternal, "tool %s has no implementation", f.Name)
	}
	return f.Run(ctx, args)
}
