package deployments

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores deployments in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Deployment
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Deployment)}
}

// Create stores the deployment.
func (r *MemoryRepo) Create(ctx context.Context, d Deployment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = d
	return nil
}

// GetByID returns a deployment by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Deployment, error) {
	if err := ctx.Err(); err != nil {
		return Deployment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	if !ok {
		return Deployment{}, ErrNotFound
	}
	return d, nil
}

// List returns deployments ordered by creation time, newest first.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Deployment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	all := make([]Deployment, 0, len(r.byID))
	for _, d := range r.byID {
		all = append(all, d)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []Deployment{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
