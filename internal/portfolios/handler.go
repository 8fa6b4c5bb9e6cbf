package portfolios

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume2portfolio/internal/extract"
	"resume2portfolio/internal/publish"
	"resume2portfolio/internal/shared/server/middleware"
	"resume2portfolio/internal/shared/server/respond"
	"resume2portfolio/internal/shared/util"
	"resume2portfolio/resume/model"
	"resume2portfolio/resume/render"
)

const defaultMaxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the portfolio service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches every portfolio route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	h.RegisterUploadRoutes(rg)
	h.RegisterSiteRoutes(rg)
	h.RegisterDeployRoutes(rg)
}

// RegisterUploadRoutes attaches POST /upload.
func (h *Handler) RegisterUploadRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
}

// RegisterSiteRoutes attaches the render routes and the template catalog.
func (h *Handler) RegisterSiteRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.templates)
	rg.POST("/generate", h.generate)
	rg.POST("/preview", h.preview)
	rg.POST("/export", h.export)
}

// RegisterDeployRoutes attaches POST /deploy.
func (h *Handler) RegisterDeployRoutes(rg *gin.RouterGroup) {
	rg.POST("/deploy", h.deploy)
}

type siteRequest struct {
	Template     string          `json:"template"`
	FrontendType string          `json:"frontend_type"`
	ParsedData   json.RawMessage `json:"parsed_data"`
}

type deployRequest struct {
	siteRequest
	GitHubToken string `json:"github_token"`
	VercelToken string `json:"vercel_token"`
}

type exportRequest struct {
	siteRequest
	Name string `json:"name"`
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || c.Request.ContentLength > limit {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the upload limit", gin.H{"limit_bytes": limit})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	rec, err := h.Svc.ParseUpload(c.Request.Context(), fileName, data)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFile):
			respond.Error(c, http.StatusBadRequest, "unsupported_file", err.Error(), nil)
		case errors.Is(err, extract.ErrExtraction), errors.Is(err, extract.ErrUnsupported):
			respond.Error(c, http.StatusUnprocessableEntity, "pdf_extraction_failed", "could not extract text from PDF", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to parse resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"filename":    fileName,
		"parsed_data": rec,
	})
}

func (h *Handler) templates(c *gin.Context) {
	respond.JSON(c, http.StatusOK, h.Svc.Catalog())
}

func (h *Handler) generate(c *gin.Context) {
	var req siteRequest
	if !bindJSON(c, &req) {
		return
	}
	rec := recordFrom(c, req.ParsedData)

	archive, err := h.Svc.Generate(rec, req.selector())
	if err != nil {
		renderError(c, err, "failed to render portfolio")
		return
	}
	setSelector(c, archive.Selector)
	c.Header("Content-Disposition", "attachment; filename="+archive.FileName)
	c.Data(http.StatusOK, "application/zip", archive.Data)
}

func (h *Handler) preview(c *gin.Context) {
	var req siteRequest
	if !bindJSON(c, &req) {
		return
	}
	rec := recordFrom(c, req.ParsedData)
	sel := h.Svc.Resolve(req.selector())

	html, err := h.Svc.Preview(rec, sel)
	if err != nil {
		renderError(c, err, "failed to render preview")
		return
	}
	setSelector(c, sel)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) deploy(c *gin.Context) {
	var req deployRequest
	if !bindJSON(c, &req) {
		return
	}
	rec := recordFrom(c, req.ParsedData)

	out, err := h.Svc.Deploy(c.Request.Context(), DeployInput{
		Record:      rec,
		Selector:    req.selector(),
		GitHubToken: req.GitHubToken,
		VercelToken: req.VercelToken,
	})
	setSelector(c, out.Selector)
	if err != nil {
		var pubErr *publish.Error
		switch {
		case errors.Is(err, publish.ErrMissingTokens):
			respond.Error(c, http.StatusBadRequest, "missing_tokens", "GitHub and Vercel tokens required", nil)
		case errors.Is(err, render.ErrBundleMissing):
			renderError(c, err, "failed to render portfolio")
		case errors.As(err, &pubErr):
			c.Set(middleware.StageKey, string(pubErr.Stage))
			respond.Error(c, http.StatusBadGateway, "publish_failed", "failed to publish portfolio", gin.H{
				"stage":           pubErr.Stage,
				"path":            pubErr.Path,
				"repo_url":        pubErr.RepoURL,
				"upstream_status": pubErr.Status,
				"upstream_body":   pubErr.Body,
				"deployment_id":   out.DeploymentID,
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to publish portfolio", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"repo_name":     out.RepoName,
		"repo_url":      out.RepoURL,
		"vercel_domain": out.Domain,
		"deployment_id": out.DeploymentID,
	})
}

func (h *Handler) export(c *gin.Context) {
	var req exportRequest
	if !bindJSON(c, &req) {
		return
	}
	rec := recordFrom(c, req.ParsedData)
	sel := h.Svc.Resolve(req.selector())

	out, err := h.Svc.Export(c.Request.Context(), rec, sel, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrExportDisabled):
			respond.Error(c, http.StatusServiceUnavailable, "export_disabled", err.Error(), nil)
		case errors.Is(err, publish.ErrInvalidName):
			respond.Error(c, http.StatusBadRequest, "validation_error", "name must contain letters or digits", nil)
		case errors.Is(err, render.ErrBundleMissing):
			renderError(c, err, "failed to render portfolio")
		default:
			respond.Error(c, http.StatusInternalServerError, "export_failed", "failed to export portfolio", nil)
		}
		return
	}
	setSelector(c, sel)
	respond.JSON(c, http.StatusOK, out)
}

func (r siteRequest) selector() render.Selector {
	return render.Selector{Theme: r.Template, Format: r.FrontendType}
}

// renderError reports a render failure. A missing template bundle is a
// deployment problem and gets its own code.
func renderError(c *gin.Context, err error, message string) {
	code := "render_failed"
	if errors.Is(err, render.ErrBundleMissing) {
		code = "template_bundle_missing"
	}
	respond.Error(c, http.StatusInternalServerError, code, message, nil)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return false
	}
	return true
}

// recordFrom decodes parsed_data. A server keeps no per-user state, so the
// last known good record is always the empty one.
func recordFrom(c *gin.Context, raw json.RawMessage) model.Record {
	rec, err := model.Edit(model.New(), raw)
	if err != nil {
		c.Header(FallbackHeader, fallbackReason)
	}
	return rec
}

func setSelector(c *gin.Context, sel render.Selector) {
	c.Set(middleware.ThemeKey, sel.Theme)
	c.Set(middleware.FormatKey, sel.Format)
}
