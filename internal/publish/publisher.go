// Package publish ships rendered sites: Publisher creates a GitHub repository
// and links a Vercel project to it, Exporter copies a site into object storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resume2portfolio/internal/shared/telemetry"
	"resume2portfolio/internal/shared/util"
	"resume2portfolio/resume/render"
)

const defaultBranch = "main"

// Settings configures a Publisher.
type Settings struct {
	// DefaultVercelToken is used when a request carries no Vercel token.
	DefaultVercelToken string
	Branch             string
	// CallTimeout bounds each remote call. Zero disables the bound.
	CallTimeout   time.Duration
	GitHubBaseURL string
	VercelBaseURL string
}

// Request is one publish attempt.
type Request struct {
	Files       render.FileSet
	Name        string
	GitHubToken string
	VercelToken string
}

// Result reports what was created. On failure it still carries the repository
// if one was made.
type Result struct {
	RepoName string `json:"repo_name"`
	RepoURL  string `json:"repo_url"`
	Domain   string `json:"domain"`
}

// Publisher runs the create repo, push files, create project pipeline. Steps
// run strictly in order and the first failure stops the pipeline.
type Publisher struct {
	Repos    RepoHost
	Sites    SiteHost
	Settings Settings
	Now      func() time.Time
}

// New returns a Publisher backed by the GitHub and Vercel APIs.
func New(settings Settings) *Publisher {
	client := &http.Client{Timeout: settings.CallTimeout}
	return &Publisher{
		Repos:    GitHub{BaseURL: settings.GitHubBaseURL, HTTPClient: client},
		Sites:    Vercel{BaseURL: settings.VercelBaseURL, HTTPClient: client},
		Settings: settings,
	}
}

// RepoName builds portfolio-<slug>-<unix seconds>, using "user" when the name
// has no usable characters.
func RepoName(name string, now time.Time) string {
	slug := util.Slug(name)
	if slug == "" {
		slug = "user"
	}
	return fmt.Sprintf("portfolio-%s-%d", slug, now.Unix())
}

// Publish creates the repository, commits every file in lexical path order and
// links a hosting project to the repository.
func (p *Publisher) Publish(ctx context.Context, req Request) (Result, error) {
	githubToken := strings.TrimSpace(req.GitHubToken)
	vercelToken := strings.TrimSpace(req.VercelToken)
	if vercelToken == "" {
		vercelToken = strings.TrimSpace(p.Settings.DefaultVercelToken)
	}
	if githubToken == "" || vercelToken == "" {
		return Result{}, ErrMissingTokens
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	branch := p.Settings.Branch
	if branch == "" {
		branch = defaultBranch
	}

	result := Result{RepoName: RepoName(req.Name, now())}
	log := map[string]any{"repo_name": result.RepoName}

	var repo Repo
	err := p.call(ctx, func(ctx context.Context) error {
		var err error
		repo, err = p.Repos.CreateRepo(ctx, githubToken, result.RepoName)
		return err
	})
	if err != nil {
		return result, p.fail(StageCreateRepo, "", "", err, log)
	}
	result.RepoURL = repo.HTMLURL
	if repo.Name != "" {
		result.RepoName = repo.Name
	}
	telemetry.Info("publish.repo_created", map[string]any{"repo": repo.FullName, "files": len(req.Files)})

	for _, path := range req.Files.Paths() {
		content := []byte(req.Files[path])
		err := p.call(ctx, func(ctx context.Context) error {
			return p.Repos.CreateFile(ctx, githubToken, repo, path, "Add "+path, content, branch)
		})
		if err != nil {
			return result, p.fail(StagePushFiles, path, result.RepoURL, err, log)
		}
	}

	fullName := repo.FullName
	if fullName == "" {
		fullName = repo.Owner + "/" + repo.Name
	}
	err = p.call(ctx, func(ctx context.Context) error {
		var err error
		result.Domain, err = p.Sites.CreateProject(ctx, vercelToken, result.RepoName, fullName)
		return err
	})
	if err != nil {
		return result, p.fail(StageCreateProject, "", result.RepoURL, err, log)
	}

	telemetry.Info("publish.completed", map[string]any{"repo": fullName, "domain": result.Domain})
	return result, nil
}

func (p *Publisher) call(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Settings.CallTimeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, p.Settings.CallTimeout)
	defer cancel()
	return fn(callCtx)
}

func (p *Publisher) fail(stage Stage, path, repoURL string, err error, fields map[string]any) error {
	out := &Error{Stage: stage, Path: path, RepoURL: repoURL, Err: err}
	var up *upstreamError
	if errors.As(err, &up) {
		out.Status = up.Status
		out.Body = up.Body
	}
	logFields := map[string]any{"stage": string(stage), "status": out.Status, "err": err}
	for k, v := range fields {
		logFields[k] = v
	}
	if path != "" {
		logFields["path"] = path
	}
	telemetry.Warn("publish.failed", logFields)
	return out
}
