package parse

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
)

const defaultEnhanced = "Enhanced: Professional with diverse experience in technology and innovation."

func TestParseNameAndSkills(t *testing.T) {
	rec := Parse("Jane Doe\nSkills\nPython, Go, Rust\n")
	if rec.Name != "Jane Doe" {
		t.Fatalf("expected name Jane Doe, got %q", rec.Name)
	}
	if !reflect.DeepEqual(rec.Skills, []string{"Python", "Go", "Rust"}) {
		t.Fatalf("unexpected skills: %#v", rec.Skills)
	}
}

func TestParseWithoutHeadings(t *testing.T) {
	inputs := []string{
		"Jane Doe\nI like building things.\nAnd shipping them.",
		"  Solo Line  ",
		"Name\n\n\n",
	}
	for _, input := range inputs {
		rec := Parse(input)
		if len(rec.Education) != 0 || len(rec.Experience) != 0 || len(rec.Projects) != 0 || len(rec.Skills) != 0 {
			t.Fatalf("expected empty sequences for %q, got %+v", input, rec)
		}
		if rec.Education == nil || rec.Experience == nil || rec.Projects == nil || rec.Skills == nil {
			t.Fatalf("expected non-nil sequences for %q", input)
		}
		if rec.Contact != "" {
			t.Fatalf("expected empty contact, got %q", rec.Contact)
		}
		if rec.Summary != defaultEnhanced {
			t.Fatalf("expected default summary, got %q", rec.Summary)
		}
	}
}

func TestParseEmptyText(t *testing.T) {
	rec := Parse("")
	if rec.Name != "" || rec.Contact != "" {
		t.Fatalf("expected empty scalars, got %+v", rec)
	}
	if rec.Summary != defaultEnhanced {
		t.Fatalf("unexpected summary: %q", rec.Summary)
	}
}

func TestParseRepeatedEducationAppends(t *testing.T) {
	text := "Ada\nEducation\nBSc Mathematics\nEducation\nMSc Computing\n"
	rec := Parse(text)
	want := []string{"BSc Mathematics", "MSc Computing"}
	if !reflect.DeepEqual(rec.Education, want) {
		t.Fatalf("expected %v, got %v", want, rec.Education)
	}
}

func TestParseRepeatedSkillsReplaces(t *testing.T) {
	text := "Ada\nSkills\nCOBOL, Fortran\nTechnical Skills\nGo,  , Rust\n"
	rec := Parse(text)
	if !reflect.DeepEqual(rec.Skills, []string{"Go", "Rust"}) {
		t.Fatalf("expected last skills line to win, got %v", rec.Skills)
	}
}

func TestParseContactLastWins(t *testing.T) {
	text := "Ada\nEmail\nada@example.com\nPhone\n+1 555 0100"
	rec := Parse(text)
	if rec.Contact != "+1 555 0100" {
		t.Fatalf("expected last contact, got %q", rec.Contact)
	}
}

func TestParseHeadingOnLastLine(t *testing.T) {
	rec := Parse("Ada\nExperience\nLead at Example\nProjects")
	if !reflect.DeepEqual(rec.Experience, []string{"Lead at Example"}) {
		t.Fatalf("unexpected experience: %v", rec.Experience)
	}
	if !reflect.DeepEqual(rec.Projects, []string{""}) {
		t.Fatalf("expected empty project entry from trailing heading, got %#v", rec.Projects)
	}

	rec = Parse("Ada\nSkills")
	if rec.Skills == nil || len(rec.Skills) != 0 {
		t.Fatalf("expected empty skills, got %#v", rec.Skills)
	}
}

func TestParseCaseInsensitiveSummary(t *testing.T) {
	rec := Parse("Ada\n  PROFILE  \n  Analytical engine enthusiast.  \n")
	if rec.Summary != "Enhanced: Analytical engine enthusiast." {
		t.Fatalf("unexpected summary: %q", rec.Summary)
	}
}

func TestParseFirstLineNeverHeading(t *testing.T) {
	rec := Parse("Skills\nGo, Rust")
	if rec.Name != "Skills" {
		t.Fatalf("expected first line as name, got %q", rec.Name)
	}
	if len(rec.Skills) != 0 {
		t.Fatalf("first line must not act as a heading, got %v", rec.Skills)
	}
}

func TestParseHandlesCRLF(t *testing.T) {
	rec := Parse("Ada\r\nSkills\r\nGo, Rust\r\n")
	if rec.Name != "Ada" {
		t.Fatalf("unexpected name %q", rec.Name)
	}
	if !reflect.DeepEqual(rec.Skills, []string{"Go", "Rust"}) {
		t.Fatalf("unexpected skills: %v", rec.Skills)
	}
}

func TestMatchFirstRuleWins(t *testing.T) {
	rules := Rules()
	cases := map[string]string{
		"Summary":             "summary",
		"objective":           "summary",
		"Technical Skills":    "skills",
		"Academic Record":     "education",
		"Work History":        "experience",
		"Portfolio":           "projects",
		"Phone":               "contact",
		"Contact Me":          "contact",
		"Experience & Skills": "experience",
	}
	for line, want := range cases {
		rule, ok := Match(rules, line)
		if !ok {
			t.Fatalf("expected %q to match", line)
		}
		if rule.Name != want {
			t.Fatalf("line %q matched %s, want %s", line, rule.Name, want)
		}
	}
	if _, ok := Match(rules, "My Skills"); ok {
		t.Fatalf("headings are prefix-anchored")
	}
}

func TestMatchPriorityWithCustomRules(t *testing.T) {
	rules := []Rule{
		{Name: "broad", Pattern: regexp.MustCompile(`(?i)^work`)},
		{Name: "narrow", Pattern: regexp.MustCompile(`(?i)^work history`)},
	}
	rule, ok := Match(rules, "Work History")
	if !ok || rule.Name != "broad" {
		t.Fatalf("expected first listed rule, got %q %v", rule.Name, ok)
	}
	rule, _ = Match([]Rule{rules[1], rules[0]}, "Work History")
	if rule.Name != "narrow" {
		t.Fatalf("expected reordered rule to win, got %q", rule.Name)
	}
}

type recordingEnhancer struct{ got string }

func (r *recordingEnhancer) Enhance(_ context.Context, summary string) (string, error) {
	r.got = summary
	return "custom:" + summary, nil
}

func TestParserUsesInjectedEnhancer(t *testing.T) {
	rec := &recordingEnhancer{}
	p := Parser{Enhancer: rec}
	out, err := p.Parse(context.Background(), "Ada\nSummary\nMathematician.")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.got != "Mathematician." {
		t.Fatalf("enhancer saw %q", rec.got)
	}
	if out.Summary != "custom:Mathematician." {
		t.Fatalf("unexpected summary %q", out.Summary)
	}
}

type erroringEnhancer struct{}

func (erroringEnhancer) Enhance(context.Context, string) (string, error) {
	return "", errors.New("boom")
}

func TestParserPropagatesEnhancerError(t *testing.T) {
	_, err := Parser{Enhancer: erroringEnhancer{}}.Parse(context.Background(), "Ada")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestParserDefaultsMatchParse(t *testing.T) {
	text := "Ada\nSummary\nPioneer.\nProjects\nNotes on the engine"
	got, err := Parser{}.Parse(context.Background(), text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(got, Parse(text)) {
		t.Fatalf("parser defaults diverge from Parse")
	}
}
