package generation

import (
	"fmt"
	"sort"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/draftforge/discovery-engine/internal/domain/model"
)

// QuestionPromptInput parameterizes the follow-up question prompt.
type QuestionPromptInput struct {
	Answers   model.AnswerMap
	Narrative string // optional preliminary narrative
	Count     int
}

// BuildQuestionPrompt renders the prompt asking the provider for a follow-up
// field schema. The response contract (a JSON questions array with the closed
// kind set) is spelled out in the prompt; ParseQuestionSchema enforces it.
func BuildQuestionPrompt(in QuestionPromptInput) string {
	count := in.Count
	if count <= 0 {
		count = 5
	}

	var b strings.Builder
	b.WriteString("You are helping scope a discovery engagement. Based on the answers below, ")
	fmt.Fprintf(&b, "propose exactly %d follow-up questions that close the most important gaps.\n\n", count)

	b.WriteString("Answers so far:\n")
	writeAnswerLines(&b, in.Answers)

	if strings.TrimSpace(in.Narrative) != "" {
		b.WriteString("\nPreliminary narrative:\n")
		b.WriteString(strings.TrimSpace(in.Narrative))
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with only a JSON object of the form " +
		`{"questions":[{"id":"...","label":"...","kind":"...","options":[],"min":0,"max":0,"required":true}]}` +
		". Allowed kinds: text, paragraph, single_choice, multi_choice, slider, number, date, date_range, boolean. " +
		"Include options only for choice kinds and min/max only for sliders.\n")
	return b.String()
}

// ReportPromptInput parameterizes the report prompt.
type ReportPromptInput struct {
	Title     string
	Kind      model.ReportKind
	Answers   model.AnswerMap
	Rendered  string   // caller-rendered prompt template, used verbatim when set
	Highlight []string // JMESPath selectors for facts to surface first
}

// BuildReportPrompt renders the generation prompt from consolidated answers.
// When the caller supplies a pre-rendered prompt (the template catalog is an
// external collaborator) it is used verbatim and only the answer context is
// appended.
func BuildReportPrompt(in ReportPromptInput) string {
	var b strings.Builder

	if strings.TrimSpace(in.Rendered) != "" {
		b.WriteString(strings.TrimSpace(in.Rendered))
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(&b, "Write a %s discovery report titled %q.\n\n", in.Kind, in.Title)
	}

	if facts := Highlights(in.Answers, in.Highlight); len(facts) > 0 {
		b.WriteString("Key facts:\n")
		for _, f := range facts {
			b.WriteString("- ")
			b.WriteString(f)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Discovery answers:\n")
	writeAnswerLines(&b, in.Answers)
	return b.String()
}

// Highlights evaluates JMESPath selectors against the answer document and
// returns the non-empty scalar results, in selector order. Selectors that
// fail to compile or match nothing are skipped; the answer document is
// caller-shaped data and a stale selector must not block submission.
func Highlights(answers model.AnswerMap, selectors []string) []string {
	if len(selectors) == 0 || len(answers) == 0 {
		return nil
	}
	doc := answers.Document()
	out := make([]string, 0, len(selectors))
	for _, expr := range selectors {
		result, err := jmespath.Search(expr, doc)
		if err != nil || result == nil {
			continue
		}
		switch t := result.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), "."))
		case bool:
			out = append(out, fmt.Sprintf("%t", t))
		}
	}
	return out
}

// writeAnswerLines emits "key: value" lines in deterministic key order so
// identical answers always produce identical prompts.
func writeAnswerLines(b *strings.Builder, answers model.AnswerMap) {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s: %s\n", k, answers[k].Text())
	}
}
