package agent

import (
	"context"

	"github.com/vooagent/voo/internal/models"
)

// ModelClient is the boundary to a remote completion endpoint. Implementations
// translate the transcript and tool descriptors into the provider's wire
// format and report every failure as *models.ModelError.
type ModelClient interface {
	Name() string
	Complete(ctx context.Context, t models.Transcript, tools []models.ToolDescriptor) (models.ModelReply, error)
}
