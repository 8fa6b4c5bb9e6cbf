package main

import (
	"os"

	"github.com/spf13/cobra"

	"resume2portfolio/internal/bootstrap"
	"resume2portfolio/internal/shared/config"
	"resume2portfolio/resume/render"
)

//nolint:gochecknoglobals // Cobra boilerplate
var templateDir string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Turn a resume into a static portfolio site",
	Long: `portfolio extracts the fields of a PDF or DOCX resume and renders them
into one of the bundled portfolio themes, as plain HTML, Tailwind HTML or a
small React project.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().StringVar(&templateDir, "templates", "", "template directory (default is the embedded bundles)")
}

func loadRenderer() (*render.Renderer, error) {
	cfg := config.Load()
	if templateDir != "" {
		cfg.TemplateDir = templateDir
	}
	return bootstrap.BuildRenderer(cfg)
}
