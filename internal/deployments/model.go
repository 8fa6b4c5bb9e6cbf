package deployments

import "time"

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Deployment records one publish attempt. Failed attempts keep the stage that
// failed and the repository URL when a repository was already created.
type Deployment struct {
	ID        string    `json:"id"`
	RepoName  string    `json:"repoName"`
	RepoURL   string    `json:"repoUrl"`
	Domain    string    `json:"domain"`
	Theme     string    `json:"theme"`
	Format    string    `json:"format"`
	Status    string    `json:"status"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
