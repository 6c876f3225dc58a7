package composer

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"igdm/pkg/profile"
)

//go:embed prompt.tmpl
var defaultPromptTemplate string

// PromptData holds the variables available in a prompt template
type PromptData struct {
	Tone     string
	Username string
	Bio      string
	Caption  string
}

// Prompt renders profile and tone into the instruction sent to the model
type Prompt struct {
	tmpl *template.Template
}

// NewPrompt parses a custom template, or the embedded default when src is empty
func NewPrompt(src string) (*Prompt, error) {
	if src == "" {
		src = defaultPromptTemplate
	}

	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// DefaultPrompt returns the embedded prompt
func DefaultPrompt() *Prompt {
	p, err := NewPrompt("")
	if err != nil {
		panic(err)
	}
	return p
}

// Render builds the prompt text. The tone is embedded lower-cased.
func (p *Prompt) Render(pr profile.Profile, tone Tone) (string, error) {
	var buf bytes.Buffer
	err := p.tmpl.Execute(&buf, PromptData{
		Tone:     tone.Lower(),
		Username: pr.Username,
		Bio:      pr.Bio,
		Caption:  pr.Caption,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

// BuildPrompt renders the default prompt
func BuildPrompt(pr profile.Profile, tone Tone) string {
	text, err := DefaultPrompt().Render(pr, tone)
	if err != nil {
		// The embedded template only references PromptData fields
		panic(err)
	}
	return text
}
