package deployments

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, repo_name, repo_url, domain, theme, format, status, stage, error_message, created_at`

// Create inserts a new deployment.
func (r *PGRepo) Create(ctx context.Context, d Deployment) error {
	const query = `
INSERT INTO deployments (id, repo_name, repo_url, domain, theme, format, status, stage, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		d.ID,
		d.RepoName,
		d.RepoURL,
		d.Domain,
		d.Theme,
		d.Format,
		d.Status,
		d.Stage,
		d.Error,
		d.CreatedAt,
	)
	return err
}

// GetByID returns a deployment by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Deployment, error) {
	query := `SELECT ` + selectColumns + ` FROM deployments WHERE id = $1 LIMIT 1`
	d, err := scanDeployment(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Deployment{}, ErrNotFound
		}
		return Deployment{}, err
	}
	return d, nil
}

// List returns deployments newest first. A non-positive limit returns every row.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Deployment, error) {
	query := `SELECT ` + selectColumns + ` FROM deployments ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	} else {
		query += ` OFFSET $1`
		args = append(args, offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Deployment{}
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeployment(row rowScanner) (Deployment, error) {
	var d Deployment
	err := row.Scan(
		&d.ID,
		&d.RepoName,
		&d.RepoURL,
		&d.Domain,
		&d.Theme,
		&d.Format,
		&d.Status,
		&d.Stage,
		&d.Error,
		&d.CreatedAt,
	)
	return d, err
}
