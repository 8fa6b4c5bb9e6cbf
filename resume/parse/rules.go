package parse

import (
	"regexp"
	"strings"

	"resume2portfolio/resume/model"
)

// Rule pairs a heading pattern with the handler that stores the value found on
// the line after the heading.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Apply   func(rec *model.Record, value string)
}

var defaultRules = []Rule{
	{
		Name:    "summary",
		Pattern: regexp.MustCompile(`(?i)^(Summary|Profile|Objective)`),
		Apply:   func(rec *model.Record, value string) { rec.Summary = value },
	},
	{
		Name:    "skills",
		Pattern: regexp.MustCompile(`(?i)^(Skills|Technical Skills)`),
		Apply:   func(rec *model.Record, value string) { rec.Skills = splitSkills(value) },
	},
	{
		Name:    "education",
		Pattern: regexp.MustCompile(`(?i)^(Education|Academic)`),
		Apply:   func(rec *model.Record, value string) { rec.Education = append(rec.Education, value) },
	},
	{
		Name:    "experience",
		Pattern: regexp.MustCompile(`(?i)^(Experience|Work)`),
		Apply:   func(rec *model.Record, value string) { rec.Experience = append(rec.Experience, value) },
	},
	{
		Name:    "projects",
		Pattern: regexp.MustCompile(`(?i)^(Projects|Portfolio)`),
		Apply:   func(rec *model.Record, value string) { rec.Projects = append(rec.Projects, value) },
	},
	{
		Name:    "contact",
		Pattern: regexp.MustCompile(`(?i)^(Contact|Email|Phone)`),
		Apply:   func(rec *model.Record, value string) { rec.Contact = value },
	},
}

// Rules returns the heading rules in priority order.
func Rules() []Rule {
	return append([]Rule(nil), defaultRules...)
}

// Match returns the first rule whose pattern matches line.
func Match(rules []Rule, line string) (Rule, bool) {
	for _, rule := range rules {
		if rule.Pattern.MatchString(line) {
			return rule, true
		}
	}
	return Rule{}, false
}

func splitSkills(line string) []string {
	out := []string{}
	for _, part := range strings.Split(line, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
