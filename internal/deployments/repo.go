package deployments

import "context"

// Repo defines persistence operations for deployments. List returns newest
// first.
type Repo interface {
	Create(ctx context.Context, d Deployment) error
	GetByID(ctx context.Context, id string) (Deployment, error)
	List(ctx context.Context, limit, offset int) ([]Deployment, error)
}
