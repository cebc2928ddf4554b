package assistant

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// GenkitModel is the production ChatModel, dispatching completions through
// a Genkit instance to whichever provider plugin is configured.
type GenkitModel struct {
	g         *genkit.Genkit
	modelName string
}

// NewGenkitModel wraps g as a ChatModel using the given provider-qualified
// model name, e.g. "openai/gpt-4o-mini".
func NewGenkitModel(g *genkit.Genkit, modelName string) *GenkitModel {
	return &GenkitModel{g: g, modelName: modelName}
}

// Complete generates a completion for the given system and user prompts.
func (m *GenkitModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	response, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.modelName),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}
	return response.Text(), nil
}
