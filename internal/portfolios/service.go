// Package portfolios serves the upload, render and publish flow over HTTP.
package portfolios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"resume2portfolio/internal/deployments"
	"resume2portfolio/internal/publish"
	"resume2portfolio/internal/shared/metrics"
	"resume2portfolio/internal/shared/telemetry"
	"resume2portfolio/internal/shared/util"
	"resume2portfolio/resume/model"
	"resume2portfolio/resume/pack"
	"resume2portfolio/resume/parse"
	"resume2portfolio/resume/render"
)

// TextExtractor pulls plain text out of an uploaded PDF.
type TextExtractor interface {
	ExtractPDF(ctx context.Context, data []byte) (string, error)
}

// SitePublisher pushes a rendered site to a repository host and a site host.
type SitePublisher interface {
	Publish(ctx context.Context, req publish.Request) (publish.Result, error)
}

// SiteExporter copies a rendered site into object storage.
type SiteExporter interface {
	Export(ctx context.Context, name string, files render.FileSet) (publish.Export, error)
}

// Service coordinates extraction, parsing, rendering and delivery.
type Service struct {
	Extractor   TextExtractor
	Parser      parse.Parser
	Renderer    *render.Renderer
	Publisher   SitePublisher
	Exporter    SiteExporter
	Deployments *deployments.Service
	Now         func() time.Time
}

// Archive is a zipped site ready for download.
type Archive struct {
	FileName string
	Data     []byte
	Selector render.Selector
}

// DeployInput is one publish request.
type DeployInput struct {
	Record      model.Record
	Selector    render.Selector
	GitHubToken string
	VercelToken string
}

// DeployOutput is a successful publish.
type DeployOutput struct {
	publish.Result
	Selector     render.Selector
	DeploymentID string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ParseUpload extracts and parses an uploaded resume. Only .pdf file names are
// accepted, matched case-insensitively.
func (s *Service) ParseUpload(ctx context.Context, fileName string, data []byte) (model.Record, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return model.Record{}, ErrUnsupportedFile
	}
	text, err := s.Extractor.ExtractPDF(ctx, data)
	if err != nil {
		metrics.IncExtractionFailed()
		telemetry.Warn("upload.extraction_failed", map[string]any{"file_name": fileName, "err": err})
		return model.Record{}, err
	}
	rec, err := s.Parser.Parse(ctx, text)
	if err != nil {
		return model.Record{}, fmt.Errorf("parse resume: %w", err)
	}
	metrics.IncUploadParsed()
	return rec, nil
}

// Catalog returns the renderer's catalog.
func (s *Service) Catalog() render.Catalog {
	return s.Renderer.Catalog()
}

// Resolve applies selector fallbacks.
func (s *Service) Resolve(sel render.Selector) render.Selector {
	return s.Renderer.Resolve(sel)
}

// Site renders rec with sel.
func (s *Service) Site(rec model.Record, sel render.Selector) (render.FileSet, render.Selector, error) {
	files, resolved, err := s.Renderer.Render(rec, sel)
	if err != nil {
		return nil, resolved, err
	}
	metrics.IncRendered()
	return files, resolved, nil
}

// Generate renders rec and zips the result. The archive name carries the
// resolved theme and format and a local timestamp.
func (s *Service) Generate(rec model.Record, sel render.Selector) (Archive, error) {
	files, resolved, err := s.Site(rec, sel)
	if err != nil {
		return Archive{}, err
	}
	data, err := pack.Zip(files)
	if err != nil {
		return Archive{}, err
	}
	name := fmt.Sprintf("portfolio_%s_%s_%s.zip", resolved.Theme, resolved.Format, s.now().Format("20060102_150405"))
	return Archive{FileName: name, Data: data, Selector: resolved}, nil
}

// Preview returns a self-contained HTML page for rec.
func (s *Service) Preview(rec model.Record, sel render.Selector) (string, error) {
	return s.Renderer.Preview(rec, sel)
}

// Deploy renders and publishes a site, recording the attempt in the deployment
// history whether or not it succeeds. Missing tokens are rejected before any
// remote call and are not recorded.
func (s *Service) Deploy(ctx context.Context, in DeployInput) (DeployOutput, error) {
	files, resolved, err := s.Site(in.Record, in.Selector)
	if err != nil {
		return DeployOutput{Selector: resolved}, err
	}

	start := metrics.NowMillis()
	metrics.IncPublishStarted()
	res, err := s.Publisher.Publish(ctx, publish.Request{
		Files:       files,
		Name:        in.Record.Name,
		GitHubToken: in.GitHubToken,
		VercelToken: in.VercelToken,
	})
	out := DeployOutput{Result: res, Selector: resolved}
	if errors.Is(err, publish.ErrMissingTokens) {
		return out, err
	}
	metrics.ObservePublishDurationMs(metrics.NowMillis() - start)

	attempt := deployments.Deployment{
		RepoName: res.RepoName,
		RepoURL:  res.RepoURL,
		Domain:   res.Domain,
		Theme:    resolved.Theme,
		Format:   resolved.Format,
		Status:   deployments.StatusSucceeded,
	}
	if err != nil {
		metrics.IncPublishFailed()
		attempt.Status = deployments.StatusFailed
		attempt.Error = err.Error()
		var pubErr *publish.Error
		if errors.As(err, &pubErr) {
			attempt.Stage = string(pubErr.Stage)
			if attempt.RepoURL == "" {
				attempt.RepoURL = pubErr.RepoURL
			}
		}
	} else {
		metrics.IncPublishSucceeded()
	}

	if s.Deployments != nil {
		if recorded, recErr := s.Deployments.Record(ctx, attempt); recErr == nil {
			out.DeploymentID = recorded.ID
		}
	}
	return out, err
}

// Export renders rec and writes it to object storage. An empty name defaults
// to the record name plus a short content hash.
func (s *Service) Export(ctx context.Context, rec model.Record, sel render.Selector, name string) (publish.Export, error) {
	if s.Exporter == nil {
		return publish.Export{}, ErrExportDisabled
	}
	files, _, err := s.Site(rec, sel)
	if err != nil {
		return publish.Export{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultExportName(rec)
	}
	out, err := s.Exporter.Export(ctx, name, files)
	if err != nil {
		return publish.Export{}, err
	}
	metrics.IncExportCompleted()
	telemetry.Info("export.completed", map[string]any{"prefix": out.Prefix, "files": len(out.Files)})
	return out, nil
}

// DefaultExportName derives a stable site name from the record contents.
func DefaultExportName(rec model.Record) string {
	raw, _ := json.Marshal(rec.Normalize())
	base := util.Slug(rec.Name)
	if base == "" {
		base = "portfolio"
	}
	return base + "-" + util.ShortHash(string(raw))
}
