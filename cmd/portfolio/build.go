package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"resume2portfolio/internal/shared/telemetry"
	"resume2portfolio/resume/model"
	"resume2portfolio/resume/pack"
	"resume2portfolio/resume/render"
)

//nolint:gochecknoglobals // Cobra boilerplate
var buildTheme string

//nolint:gochecknoglobals // Cobra boilerplate
var buildFormat string

//nolint:gochecknoglobals // Cobra boilerplate
var editedData string

//nolint:gochecknoglobals // Cobra boilerplate
var buildOut string

//nolint:gochecknoglobals // Cobra boilerplate
var buildCmd = &cobra.Command{
	Use:   "build <resume.pdf|resume.docx>",
	Short: "Render a portfolio site from a resume",
	Long: `Render a portfolio site from a resume.

When --out ends in .zip the site is written as a zip archive, otherwise the
files are written into that directory. --data applies an edited record; if it
cannot be decoded the parsed record is used instead.

Example:
  portfolio build resume.pdf --theme terminal --format react --out site.zip
  portfolio build resume.pdf --data edited.json --out ./site`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildTheme, "theme", "", "theme id (default from the catalog)")
	buildCmd.Flags().StringVar(&buildFormat, "format", "", "output format id (default from the catalog)")
	buildCmd.Flags().StringVar(&editedData, "data", "", "edited record JSON file")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "output .zip file or directory (default portfolio_<theme>_<format>_<timestamp>.zip)")
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	renderer, err := loadRenderer()
	if err != nil {
		return err
	}
	rec, err := parseResume(ctx, args[0])
	if err != nil {
		return err
	}
	if editedData != "" {
		rec, err = applyEdits(rec, editedData)
		if err != nil {
			return err
		}
	}

	files, sel, err := renderer.Render(rec, render.Selector{Theme: buildTheme, Format: buildFormat})
	if err != nil {
		return errors.Wrap(err, "render site")
	}

	out := buildOut
	if out == "" {
		out = fmt.Sprintf("portfolio_%s_%s_%s.zip", sel.Theme, sel.Format, time.Now().Format("20060102_150405"))
	}
	if err := writeSite(files, out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s/%s, %d files)\n", out, sel.Theme, sel.Format, len(files))
	return err
}

// applyEdits decodes the edited record at path. An undecodable document keeps
// the parsed record.
func applyEdits(parsed model.Record, path string) (model.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return parsed, errors.Wrapf(err, "read %s", path)
	}
	rec, err := model.Edit(parsed, raw)
	if err != nil {
		telemetry.Warn("cli.edited_record_ignored", map[string]any{"path": path, "err": err})
	}
	return rec, nil
}

func writeSite(files render.FileSet, out string) error {
	if strings.EqualFold(filepath.Ext(out), ".zip") {
		data, err := pack.Zip(files)
		if err != nil {
			return errors.Wrap(err, "zip site")
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", out)
		}
		return nil
	}

	for _, p := range files.Paths() {
		target := filepath.Join(out, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "create %s", filepath.Dir(target))
		}
		if err := os.WriteFile(target, []byte(files[p]), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", target)
		}
	}
	return nil
}
