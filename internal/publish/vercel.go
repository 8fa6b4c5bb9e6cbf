package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultVercelBaseURL = "https://api.vercel.com"
	pendingDomain        = "Deployment in progress"
	maxUpstreamBody      = 4 << 10
)

// SiteHost creates hosting projects linked to a repository.
type SiteHost interface {
	CreateProject(ctx context.Context, token, name, repoFullName string) (domain string, err error)
}

// Vercel is a SiteHost backed by the Vercel REST API.
type Vercel struct {
	BaseURL    string
	HTTPClient *http.Client
}

type vercelProjectRequest struct {
	Name          string              `json:"name"`
	GitRepository vercelGitRepository `json:"gitRepository"`
}

type vercelGitRepository struct {
	Type string `json:"type"`
	Repo string `json:"repo"`
}

// CreateProject links a new Vercel project to repoFullName ("owner/repo").
// The returned domain is the one Vercel reports, or a pending placeholder.
func (v Vercel) CreateProject(ctx context.Context, token, name, repoFullName string) (string, error) {
	payload, err := json.Marshal(vercelProjectRequest{
		Name:          name,
		GitRepository: vercelGitRepository{Type: "github", Repo: repoFullName},
	})
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(v.BaseURL, "/")
	if base == "" {
		base = defaultVercelBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v10/projects", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := v.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &upstreamError{Err: fmt.Errorf("vercel request: %w", err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &upstreamError{Status: resp.StatusCode, Body: string(body), Err: fmt.Errorf("vercel status %d", resp.StatusCode)}
	}

	var out struct {
		Domain string `json:"domain"`
	}
	if err := json.Unmarshal(body, &out); err != nil || strings.TrimSpace(out.Domain) == "" {
		return pendingDomain, nil
	}
	return out.Domain, nil
}

var _ SiteHost = Vercel{}
