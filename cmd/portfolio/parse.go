package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"resume2portfolio/internal/bootstrap"
	"resume2portfolio/internal/extract"
	"resume2portfolio/internal/shared/config"
	"resume2portfolio/resume/model"
	"resume2portfolio/resume/parse"
)

//nolint:gochecknoglobals // Cobra boilerplate
var recordOut string

//nolint:gochecknoglobals // Cobra boilerplate
var parseCmd = &cobra.Command{
	Use:   "parse <resume.pdf|resume.docx>",
	Short: "Extract the structured record from a resume",
	Long: `Extract the structured record from a resume and print it as JSON.

The output can be edited and passed back to "portfolio build --data".

Example:
  portfolio parse resume.pdf --out record.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&recordOut, "out", "", "write the record to this file instead of stdout")
}

func runParse(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rec, err := parseResume(ctx, args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	if recordOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(recordOut, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", recordOut)
	}
	return nil
}

func parseResume(ctx context.Context, path string) (model.Record, error) {
	text, err := extract.Extractor{}.ExtractFile(ctx, path)
	if err != nil {
		return model.Record{}, errors.Wrapf(err, "extract %s", path)
	}
	parser := parse.Parser{Enhancer: bootstrap.BuildEnhancer(config.Load())}
	rec, err := parser.Parse(ctx, text)
	if err != nil {
		return model.Record{}, errors.Wrap(err, "parse resume")
	}
	return rec, nil
}
