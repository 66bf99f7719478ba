// Package persona describes the assistant presented to agents and chat users:
// its name, the tool it drives and the instruction it follows.
package persona

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/loam"
)

// DocumentID is the loam document holding the card (agent.md on disk).
const DocumentID = "agent"

// Card is the frontmatter of agent.md.
type Card struct {
	Name        string `json:"name" mapstructure:"name"`
	Model       string `json:"model,omitempty" mapstructure:"model"`
	Description string `json:"description" mapstructure:"description"`
	OutputKey   string `json:"output_key,omitempty" mapstructure:"output_key"`
	Tool        string `json:"tool,omitempty" mapstructure:"tool"`
}

// Persona is a card plus its instruction text (the markdown body).
type Persona struct {
	Card
	Instruction string `json:"instruction"`
}

const defaultInstruction = `You are a helpful and efficient assistant for validating HSN codes.
Your primary goal is to understand the user's request, identify any HSN codes mentioned,
and use the provided 'hsn_code_validation_tool' to check their validity.
Present the results from the tool to the user in a clear, easy-to-read format.
If a code is valid, state its description. If invalid, state the reason.
Be friendly and conversational in your responses. Use emojis where appropriate to make the interaction engaging (e.g., ✅ for valid, ❌ for invalid, ℹ️ for info).
After providing results, ask the user if they are satisfied or if they would like to validate more codes (e.g., "Would you like to check another HSN code? 😊").
If the user seems confused or needs help, offer guidance or examples.
Confirm if the user is happy with the answer or needs further assistance.
Thank the user for using the service and encourage feedback for improvement.`

// Default returns the built-in persona.
func Default() Persona {
	return Persona{
		Card: Card{
			Name:        "hsn_code_agent",
			Model:       "gemini-1.5-flash-001",
			Description: "Agent to validate and look up HSN codes using a preloaded master data file.",
			OutputKey:   domain.KeyLastResponse,
			Tool:        domain.ToolName,
		},
		Instruction: defaultInstruction,
	}
}

// Load reads <dir>/agent.md through a read-only loam repository. Fields left
// empty in the document fall back to Default.
func Load(ctx context.Context, dir string) (Persona, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return Persona{}, fmt.Errorf("invalid persona dir: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return Persona{}, fmt.Errorf("persona dir: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return Persona{}, fmt.Errorf("failed to initialize loam: %w", err)
	}

	doc, err := loam.NewTypedRepository[Card](repo).Get(ctx, DocumentID)
	if err != nil {
		return Persona{}, fmt.Errorf("loam get failed for %s: %w", DocumentID, err)
	}

	p := Persona{Card: doc.Data, Instruction: strings.TrimSpace(doc.Content)}
	p.fill(Default())
	return p, nil
}

// LoadOrDefault is Load with an empty dir meaning Default.
func LoadOrDefault(ctx context.Context, dir string) (Persona, error) {
	if dir == "" {
		return Default(), nil
	}
	return Load(ctx, dir)
}

func (p *Persona) fill(def Persona) {
	if p.Name == "" {
		p.Name = def.Name
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.Description == "" {
		p.Description = def.Description
	}
	if p.OutputKey == "" {
		p.OutputKey = def.OutputKey
	}
	if p.Tool == "" {
		p.Tool = def.Tool
	}
	if p.Instruction == "" {
		p.Instruction = def.Instruction
	}
}

// Validate checks the persona drives the validation tool.
func (p Persona) Validate() error {
	if p.Tool != domain.ToolName {
		return fmt.Errorf("persona %q must use tool %q, got %q", p.Name, domain.ToolName, p.Tool)
	}
	if strings.TrimSpace(p.Instruction) == "" {
		return errors.New("persona instruction is empty")
	}
	return nil
}

// Prompt renders the system prompt handed to a model.
func (p Persona) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	b.WriteString(p.Instruction)
	return b.String()
}
