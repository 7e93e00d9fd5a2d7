package step

import (
	"github.com/davetashner/sonarstep/internal/llm"
	"github.com/davetashner/sonarstep/internal/persona"
)

// Fixed generation and search parameters sent with every request.
const (
	Model               = llm.DefaultModel
	Temperature         = 0.2
	TopP                = 0.9
	TopK                = 0
	PresencePenalty     = 0.0
	FrequencyPenalty    = 1.0
	SearchRecencyFilter = "year"
)

// SearchDomains returns the search allow-list: the Turo platform plus
// industry and regulatory sources.
func SearchDomains() []string {
	return []string{
		"turo.com",
		"support.turo.com",
		"carsharing.org",
		"sharedmobility.org",
		"transportation.gov",
		"nhtsa.gov",
	}
}

// BuildRequest assembles the completion request for a validated input.
func BuildRequest(p *persona.Persona, n Normalized) llm.Request {
	return llm.Request{
		Model: Model,
		Messages: []llm.Message{
			llm.SystemMessage(p.Render(n.MaxTokens)),
			llm.UserMessage(n.Prompt),
		},
		MaxTokens:              n.MaxTokens,
		Temperature:            Temperature,
		TopP:                   TopP,
		ReturnCitations:        false,
		SearchDomainFilter:     SearchDomains(),
		ReturnImages:           false,
		ReturnRelatedQuestions: false,
		SearchRecencyFilter:    SearchRecencyFilter,
		TopK:                   TopK,
		Stream:                 false,
		PresencePenalty:        PresencePenalty,
		FrequencyPenalty:       FrequencyPenalty,
	}
}
