package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// Repo identifies a created repository.
type Repo struct {
	Owner    string
	Name     string
	FullName string
	HTMLURL  string
}

// RepoHost creates repositories and commits files to them.
type RepoHost interface {
	CreateRepo(ctx context.Context, token, name string) (Repo, error)
	CreateFile(ctx context.Context, token string, repo Repo, path, message string, content []byte, branch string) error
}

// GitHub is a RepoHost backed by the GitHub REST API.
type GitHub struct {
	// BaseURL overrides https://api.github.com/ (GitHub Enterprise or tests).
	BaseURL string
	// HTTPClient is the transport under the OAuth2 token source.
	HTTPClient *http.Client
}

func (g GitHub) client(ctx context.Context, token string) (*github.Client, error) {
	if g.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	c := github.NewClient(oauth2.NewClient(ctx, ts))
	if base := strings.TrimSpace(g.BaseURL); base != "" {
		u, err := url.Parse(strings.TrimRight(base, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
		c.BaseURL = u
	}
	return c, nil
}

// CreateRepo creates a public repository without an initial commit under the
// token owner's account.
func (g GitHub) CreateRepo(ctx context.Context, token, name string) (Repo, error) {
	c, err := g.client(ctx, token)
	if err != nil {
		return Repo{}, err
	}
	created, resp, err := c.Repositories.Create(ctx, "", &github.Repository{
		Name:     github.String(name),
		Private:  github.Bool(false),
		AutoInit: github.Bool(false),
	})
	if err != nil {
		return Repo{}, githubError(resp, err)
	}
	return Repo{
		Owner:    created.GetOwner().GetLogin(),
		Name:     created.GetName(),
		FullName: created.GetFullName(),
		HTMLURL:  created.GetHTMLURL(),
	}, nil
}

// CreateFile commits one file to branch.
func (g GitHub) CreateFile(ctx context.Context, token string, repo Repo, path, message string, content []byte, branch string) error {
	c, err := g.client(ctx, token)
	if err != nil {
		return err
	}
	_, resp, err := c.Repositories.CreateFile(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(branch),
	})
	if err != nil {
		return githubError(resp, err)
	}
	return nil
}

func githubError(resp *github.Response, err error) error {
	out := &upstreamError{Err: err}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		out.Body = errResp.Message
		if errResp.Response != nil {
			out.Status = errResp.Response.StatusCode
		}
	}
	if out.Status == 0 && resp != nil && resp.Response != nil {
		out.Status = resp.StatusCode
	}
	return out
}

var _ RepoHost = GitHub{}
