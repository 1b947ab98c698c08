package config

import (
	"strings"
	"time"
)

// ProviderConfig contains generation provider connection settings.
type ProviderConfig struct {
	// BaseURL is the generation service endpoint.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:9090"`

	// APIKey authenticates submissions. Empty disables the auth header.
	APIKey string `env:"API_KEY" envDefault:""`

	// Model names the provider model used for report generation.
	Model string `env:"MODEL" envDefault:""`

	// QuestionModel names the model for follow-up question generation.
	// Falls back to Model when empty.
	QuestionModel string `env:"QUESTION_MODEL" envDefault:""`

	// Timeout bounds one HTTP round trip to the provider.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// QuestionCount is how many follow-up questions to request.
	QuestionCount int `env:"QUESTION_COUNT" envDefault:"5"`

	// QuestionMaxWait bounds the synchronous question generation round trip.
	QuestionMaxWait time.Duration `env:"QUESTION_MAX_WAIT" envDefault:"2m"`

	// Highlights are selector expressions evaluated against the consolidated
	// answers and emphasised in report prompts. Comma-separated.
	Highlights []string `env:"HIGHLIGHTS" envDefault:""`
}

// Sanitize applies guardrails to provider configuration values.
func (p *ProviderConfig) Sanitize() {
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.APIKey = strings.TrimSpace(p.APIKey)
	if p.QuestionModel == "" {
		p.QuestionModel = p.Model
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.QuestionCount < 1 {
		p.QuestionCount = 5
	}
	if p.QuestionCount > 20 {
		p.QuestionCount = 20
	}
	if p.QuestionMaxWait <= 0 {
		p.QuestionMaxWait = 2 * time.Minute
	}
}
