// Package parse turns extracted resume text into a model.Record using a
// heading-keyword heuristic: a recognized heading line takes the line right
// after it as its value.
package parse

import (
	"context"
	"fmt"
	"strings"

	"resume2portfolio/resume/enhance"
	"resume2portfolio/resume/model"
)

// Parser extracts records from plain text.
type Parser struct {
	Enhancer enhance.Enhancer
	Rules    []Rule
}

// Parse runs the default rules and the placeholder enhancer over text.
func Parse(text string) model.Record {
	rec := scan(text, defaultRules)
	rec.Summary = enhance.Summary(rec.Summary)
	return rec
}

// Parse scans text line by line and enhances the resulting summary.
func (p Parser) Parse(ctx context.Context, text string) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}
	rules := p.Rules
	if len(rules) == 0 {
		rules = defaultRules
	}
	enhancer := p.Enhancer
	if enhancer == nil {
		enhancer = enhance.Placeholder{}
	}

	rec := scan(text, rules)
	summary, err := enhancer.Enhance(ctx, rec.Summary)
	if err != nil {
		return model.Record{}, fmt.Errorf("enhance summary: %w", err)
	}
	rec.Summary = summary
	return rec, nil
}

func scan(text string, rules []Rule) model.Record {
	rec := model.New()
	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if i == 0 {
			if rec.Name == "" {
				rec.Name = line
			}
			continue
		}
		rule, ok := Match(rules, line)
		if !ok {
			continue
		}
		rule.Apply(&rec, lookahead(lines, i))
	}
	return rec
}

func lookahead(lines []string, i int) string {
	if i+1 >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i+1])
}
