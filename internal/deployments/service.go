package deployments

import (
	"context"
	"time"

	"github.com/google/uuid"

	"resume2portfolio/internal/shared/telemetry"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service records and lists deployments.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

// Record assigns an ID and timestamp to d and stores it. Storage failures are
// logged and returned; the caller decides whether they matter.
func (s *Service) Record(ctx context.Context, d Deployment) (Deployment, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = s.Now()
	if d.Status == "" {
		d.Status = StatusSucceeded
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		telemetry.Error("deployments.record_failed", map[string]any{"repo_name": d.RepoName, "err": err})
		return d, err
	}
	telemetry.Info("deployments.recorded", map[string]any{"id": d.ID, "status": d.Status, "stage": d.Stage})
	return d, nil
}

// Get returns one deployment.
func (s *Service) Get(ctx context.Context, id string) (Deployment, error) {
	return s.Repo.GetByID(ctx, id)
}

// List clamps limit to [1, 100] (default 20) and offset to >= 0.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Deployment, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(ctx, limit, offset)
}
