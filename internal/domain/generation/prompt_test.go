package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftforge/discovery-engine/internal/domain/model"
)

func TestBuildQuestionPrompt(t *testing.T) {
	prompt := BuildQuestionPrompt(QuestionPromptInput{
		Answers: model.AnswerMap{
			"company_name": model.StringAnswer("Acme"),
			"employees":    model.NumberAnswer(250),
		},
		Count: 3,
	})

	assert.Contains(t, prompt, "exactly 3 follow-up questions")
	assert.Contains(t, prompt, "company_name: Acme")
	assert.Contains(t, prompt, "employees: 250")
	assert.Contains(t, prompt, `"questions"`)
	assert.Contains(t, prompt, "single_choice")
}

func TestBuildQuestionPrompt_DefaultsCountAndIncludesNarrative(t *testing.T) {
	prompt := BuildQuestionPrompt(QuestionPromptInput{
		Answers:   model.AnswerMap{"goal": model.StringAnswer("growth")},
		Narrative: "The client is expanding into Europe.",
	})

	assert.Contains(t, prompt, "exactly 5 follow-up questions")
	assert.Contains(t, prompt, "Preliminary narrative:")
	assert.Contains(t, prompt, "expanding into Europe")
}

func TestBuildQuestionPrompt_Deterministic(t *testing.T) {
	in := QuestionPromptInput{
		Answers: model.AnswerMap{
			"b": model.StringAnswer("2"),
			"a": model.StringAnswer("1"),
			"c": model.StringAnswer("3"),
		},
	}
	first := BuildQuestionPrompt(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildQuestionPrompt(in))
	}
	// keys appear sorted
	assert.Less(t, strings.Index(first, "a: 1"), strings.Index(first, "b: 2"))
	assert.Less(t, strings.Index(first, "b: 2"), strings.Index(first, "c: 3"))
}

func TestBuildReportPrompt(t *testing.T) {
	prompt := BuildReportPrompt(ReportPromptInput{
		Title:   "Acme Expansion",
		Kind:    model.ReportKindFinal,
		Answers: model.AnswerMap{"company_name": model.StringAnswer("Acme")},
	})

	assert.Contains(t, prompt, `Write a final discovery report titled "Acme Expansion".`)
	assert.Contains(t, prompt, "company_name: Acme")
}

func TestBuildReportPrompt_RenderedTemplateWins(t *testing.T) {
	prompt := BuildReportPrompt(ReportPromptInput{
		Title:    "ignored",
		Kind:     model.ReportKindFinal,
		Rendered: "Custom template body.",
		Answers:  model.AnswerMap{"k": model.StringAnswer("v")},
	})

	assert.True(t, strings.HasPrefix(prompt, "Custom template body."))
	assert.NotContains(t, prompt, "Write a final discovery report")
	assert.Contains(t, prompt, "k: v")
}

func TestBuildReportPrompt_Highlights(t *testing.T) {
	prompt := BuildReportPrompt(ReportPromptInput{
		Title: "Acme",
		Kind:  model.ReportKindPreliminary,
		Answers: model.AnswerMap{
			"company_name": model.StringAnswer("Acme"),
			"contact":      model.ObjectAnswer(map[string]model.AnswerValue{"name": model.StringAnswer("Sam")}),
		},
		Highlight: []string{"company_name", "contact.name"},
	})

	assert.Contains(t, prompt, "Key facts:\n- Acme\n- Sam\n")
}

func TestHighlights(t *testing.T) {
	answers := model.AnswerMap{
		"company_name": model.StringAnswer("Acme"),
		"employees":    model.NumberAnswer(250),
		"public":       model.BoolAnswer(true),
		"contact":      model.ObjectAnswer(map[string]model.AnswerValue{"name": model.StringAnswer("Sam")}),
	}

	got := Highlights(answers, []string{
		"company_name",
		"contact.name",
		"employees",
		"public",
		"missing_key",
		"not a (valid selector",
	})

	assert.Equal(t, []string{"Acme", "Sam", "250", "true"}, got)
}

func TestHighlights_EmptyInputs(t *testing.T) {
	require.Nil(t, Highlights(nil, []string{"a"}))
	require.Nil(t, Highlights(model.AnswerMap{"a": model.StringAnswer("x")}, nil))
}
