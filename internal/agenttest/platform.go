package agenttest

import (
	"context"

	"github.com/semmidev/kustos/internal/domain"
)

var _ domain.Platform = (*Platform)(nil)

// Platform is a fake backup platform serving a fixed set of agents.
type Platform struct {
	agents []domain.Agent
	err    error
}

func NewPlatform(agents ...domain.Agent) *Platform {
	return &Platform{agents: agents}
}

// NewFailingPlatform builds a platform whose Agents call fails, for tests
// covering platform load errors.
func NewFailingPlatform(err error) *Platform {
	return &Platform{err: err}
}

func (p *Platform) Agents(ctx context.Context) ([]domain.Agent, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.agents, nil
}
