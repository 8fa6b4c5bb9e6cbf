package publish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"resume2portfolio/resume/render"
)

var fixedNow = func() time.Time { return time.Unix(1700000000, 0) }

type fakeRepos struct {
	createErr error
	fileErrOn string
	created   []string
	files     []string
	messages  []string
	branches  []string
}

func (f *fakeRepos) CreateRepo(_ context.Context, _ string, name string) (Repo, error) {
	if f.createErr != nil {
		return Repo{}, f.createErr
	}
	f.created = append(f.created, name)
	return Repo{Owner: "ada", Name: name, FullName: "ada/" + name, HTMLURL: "https://github.com/ada/" + name}, nil
}

func (f *fakeRepos) CreateFile(_ context.Context, _ string, _ Repo, path, message string, _ []byte, branch string) error {
	if path == f.fileErrOn {
		return &upstreamError{Status: 409, Body: "conflict"}
	}
	f.files = append(f.files, path)
	f.messages = append(f.messages, message)
	f.branches = append(f.branches, branch)
	return nil
}

type fakeSites struct {
	domain string
	err    error
	calls  int
	token  string
	repo   string
}

func (f *fakeSites) CreateProject(_ context.Context, token, _ string, repo string) (string, error) {
	f.calls++
	f.token = token
	f.repo = repo
	return f.domain, f.err
}

func sampleFiles() render.FileSet {
	return render.FileSet{"styles.css": "h1{}", "index.html": "<h1>Ada</h1>"}
}

func TestRepoName(t *testing.T) {
	if got := RepoName("Ada Lovelace", fixedNow()); got != "portfolio-ada-lovelace-1700000000" {
		t.Fatalf("unexpected repo name %q", got)
	}
	if got := RepoName("  ", fixedNow()); got != "portfolio-user-1700000000" {
		t.Fatalf("unexpected fallback repo name %q", got)
	}
}

func TestPublishRequiresTokens(t *testing.T) {
	repos := &fakeRepos{}
	p := &Publisher{Repos: repos, Sites: &fakeSites{}, Now: fixedNow}
	cases := []Request{
		{GitHubToken: "gh"},
		{VercelToken: "vc"},
		{GitHubToken: "  ", VercelToken: "vc"},
	}
	for _, req := range cases {
		if _, err := p.Publish(context.Background(), req); !errors.Is(err, ErrMissingTokens) {
			t.Fatalf("expected ErrMissingTokens for %+v, got %v", req, err)
		}
	}
	if len(repos.created) != 0 {
		t.Fatalf("no repository may be created without tokens")
	}
}

func TestPublishUsesDefaultVercelToken(t *testing.T) {
	sites := &fakeSites{domain: "ada.vercel.app"}
	p := &Publisher{Repos: &fakeRepos{}, Sites: sites, Now: fixedNow, Settings: Settings{DefaultVercelToken: "server"}}
	if _, err := p.Publish(context.Background(), Request{Files: sampleFiles(), GitHubToken: "gh"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if sites.token != "server" {
		t.Fatalf("expected configured vercel token, got %q", sites.token)
	}
}

func TestPublishHappyPath(t *testing.T) {
	repos := &fakeRepos{}
	sites := &fakeSites{domain: "ada.vercel.app"}
	p := &Publisher{Repos: repos, Sites: sites, Now: fixedNow}

	res, err := p.Publish(context.Background(), Request{Files: sampleFiles(), Name: "Ada", GitHubToken: "gh", VercelToken: "vc"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	want := Result{RepoName: "portfolio-ada-1700000000", RepoURL: "https://github.com/ada/portfolio-ada-1700000000", Domain: "ada.vercel.app"}
	if res != want {
		t.Fatalf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(repos.files, []string{"index.html", "styles.css"}) {
		t.Fatalf("files must be pushed in path order, got %v", repos.files)
	}
	if repos.messages[0] != "Add index.html" || repos.branches[0] != "main" {
		t.Fatalf("unexpected commit %q on %q", repos.messages[0], repos.branches[0])
	}
	if sites.repo != "ada/portfolio-ada-1700000000" {
		t.Fatalf("unexpected linked repo %q", sites.repo)
	}
}

func TestPublishRepoFailureSkipsDeploy(t *testing.T) {
	repos := &fakeRepos{createErr: &upstreamError{Status: 422, Body: "name already exists"}}
	sites := &fakeSites{}
	p := &Publisher{Repos: repos, Sites: sites, Now: fixedNow}

	_, err := p.Publish(context.Background(), Request{Files: sampleFiles(), GitHubToken: "gh", VercelToken: "vc"})
	var pubErr *Error
	if !errors.As(err, &pubErr) || !errors.Is(err, ErrRemotePublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if pubErr.Stage != StageCreateRepo || pubErr.Status != 422 || pubErr.Body != "name already exists" {
		t.Fatalf("unexpected error detail %+v", pubErr)
	}
	if sites.calls != 0 {
		t.Fatalf("deploy must not run after a repository failure")
	}
}

func TestPublishFileFailureStopsPipeline(t *testing.T) {
	repos := &fakeRepos{fileErrOn: "index.html"}
	sites := &fakeSites{}
	p := &Publisher{Repos: repos, Sites: sites, Now: fixedNow}

	res, err := p.Publish(context.Background(), Request{Files: sampleFiles(), GitHubToken: "gh", VercelToken: "vc"})
	var pubErr *Error
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if pubErr.Stage != StagePushFiles || pubErr.Path != "index.html" || pubErr.Status != 409 {
		t.Fatalf("unexpected error detail %+v", pubErr)
	}
	if pubErr.RepoURL == "" || res.RepoURL != pubErr.RepoURL {
		t.Fatalf("expected created repository to be reported, got %+v", res)
	}
	if len(repos.files) != 0 || sites.calls != 0 {
		t.Fatalf("pipeline must stop at the first failure")
	}
}

func TestPublishProjectFailure(t *testing.T) {
	sites := &fakeSites{err: &upstreamError{Status: 400, Body: `{"error":"bad"}`}}
	p := &Publisher{Repos: &fakeRepos{}, Sites: sites, Now: fixedNow}

	_, err := p.Publish(context.Background(), Request{Files: sampleFiles(), GitHubToken: "gh", VercelToken: "vc"})
	var pubErr *Error
	if !errors.As(err, &pubErr) || pubErr.Stage != StageCreateProject || pubErr.Status != 400 {
		t.Fatalf("expected create_project failure, got %v", err)
	}
}

func TestPublishAgainstHTTPServers(t *testing.T) {
	var mu sync.Mutex
	var pushed []string
	var pushedContent = map[string]string{}

	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer gh-token" {
			t.Errorf("unexpected github auth %q", got)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["private"] != false || body["auto_init"] != false {
				t.Errorf("unexpected repo options %v", body)
			}
			name, _ := body["name"].(string)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"name":      name,
				"full_name": "ada/" + name,
				"html_url":  "https://github.com/ada/" + name,
				"owner":     map[string]any{"login": "ada"},
			})
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/repos/ada/"):
			var body struct {
				Message string `json:"message"`
				Content string `json:"content"`
				Branch  string `json:"branch"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			decoded, _ := base64.StdEncoding.DecodeString(body.Content)
			path := r.URL.Path[strings.Index(r.URL.Path, "/contents/")+len("/contents/"):]
			mu.Lock()
			pushed = append(pushed, path)
			pushedContent[path] = string(decoded)
			mu.Unlock()
			if body.Message != "Add "+path || body.Branch != "main" {
				t.Errorf("unexpected commit %+v", body)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{}`)
		default:
			t.Errorf("unexpected github call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer gh.Close()

	vc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v10/projects" {
			t.Errorf("unexpected vercel call %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer vc-token" {
			t.Errorf("unexpected vercel auth %q", got)
		}
		var body vercelProjectRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.GitRepository.Type != "github" || body.GitRepository.Repo != "ada/portfolio-ada-1700000000" {
			t.Errorf("unexpected project payload %+v", body)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"domain":"portfolio-ada.vercel.app"}`)
	}))
	defer vc.Close()

	p := New(Settings{GitHubBaseURL: gh.URL, VercelBaseURL: vc.URL, CallTimeout: 5 * time.Second})
	p.Now = fixedNow

	res, err := p.Publish(context.Background(), Request{Files: sampleFiles(), Name: "Ada", GitHubToken: "gh-token", VercelToken: "vc-token"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if res.Domain != "portfolio-ada.vercel.app" || res.RepoURL != "https://github.com/ada/portfolio-ada-1700000000" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(pushed, []string{"index.html", "styles.css"}) {
		t.Fatalf("unexpected pushed files %v", pushed)
	}
	if pushedContent["index.html"] != "<h1>Ada</h1>" {
		t.Fatalf("unexpected pushed content %q", pushedContent["index.html"])
	}
}

func TestGitHubErrorCarriesStatus(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"Repository creation failed."}`)
	}))
	defer gh.Close()

	_, err := GitHub{BaseURL: gh.URL}.CreateRepo(context.Background(), "gh", "portfolio-x")
	var up *upstreamError
	if !errors.As(err, &up) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if up.Status != http.StatusUnprocessableEntity || up.Body != "Repository creation failed." {
		t.Fatalf("unexpected upstream error %+v", up)
	}
}

func TestVercelPendingDomain(t *testing.T) {
	vc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"prj_1"}`)
	}))
	defer vc.Close()

	domain, err := Vercel{BaseURL: vc.URL}.CreateProject(context.Background(), "vc", "p", "ada/p")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if domain != "Deployment in progress" {
		t.Fatalf("unexpected domain %q", domain)
	}
}

func TestVercelRejection(t *testing.T) {
	vc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":"forbidden"}}`)
	}))
	defer vc.Close()

	_, err := Vercel{BaseURL: vc.URL}.CreateProject(context.Background(), "vc", "p", "ada/p")
	var up *upstreamError
	if !errors.As(err, &up) || up.Status != http.StatusForbidden || !strings.Contains(up.Body, "forbidden") {
		t.Fatalf("expected 403 upstream error, got %v", err)
	}
}
