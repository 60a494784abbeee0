package engine

import (
	"context"
	"fmt"
	"strings"

	loremgen "github.com/bozaro/golorem"

	"planner/internal/domain/services"
	"planner/internal/tenant"
)

// LoremEngine is a mock conversation engine that generates lorem ipsum
// replies. Used for development and tests without real API keys. It goes
// through the same tenant-bound document calls as the real engine, so
// the bridge path stays exercised.
type LoremEngine struct {
	generator *loremgen.Lorem
}

// NewLoremEngine creates a new lorem ipsum engine.
func NewLoremEngine() *LoremEngine {
	return &LoremEngine{generator: loremgen.New()}
}

// Respond generates a filler reply. Messages containing "document" or
// "plan" also append a lorem section to the project document, mimicking a
// PMO hand-off.
func (e *LoremEngine) Respond(ctx context.Context, req *services.EngineRequest) (*services.EngineReply, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	lowered := strings.ToLower(req.Message)
	if strings.Contains(lowered, "document") || strings.Contains(lowered, "plan") {
		current, err := tenant.ReadDocument(ctx)
		if err != nil {
			return nil, err
		}

		section := fmt.Sprintf("## %s\n\n%s\n",
			e.generator.Sentence(2, 4),
			e.generator.Paragraph(2, 4),
		)
		updated := strings.TrimSpace(current + "\n\n" + section)
		if err := tenant.WriteDocument(ctx, updated); err != nil {
			return nil, err
		}

		return &services.EngineReply{
			Response: "I've updated the project document. " + e.generator.Sentence(5, 10),
		}, nil
	}

	return &services.EngineReply{Response: e.generator.Paragraph(1, 3)}, nil
}
