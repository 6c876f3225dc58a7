// Package composer turns a resolved profile and a tone into a generated
// direct message.
//
// Generation failures never escape Compose: they are returned as an Outcome
// carrying a tagged error, so one bad row cannot stop a batch. How a failed
// outcome is shown is up to the caller; Display gives the conventional
// inline form.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	errs "igdm/pkg/errors"
	"igdm/pkg/profile"
	"igdm/pkg/table"
)

// Generator produces text for a prompt with one synchronous call
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Outcome is either generated text or a tagged error
type Outcome struct {
	Text string
	Err  *errs.Error
}

// OK reports whether generation succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Display renders the outcome for a table cell
func (o Outcome) Display() string {
	if o.Err == nil {
		return o.Text
	}
	return fmt.Sprintf("[Error generating message: %s]", o.Err.Message)
}

// Composer builds prompts and delegates generation
type Composer struct {
	generator Generator
	prompt    *Prompt
}

// New creates a composer. A nil prompt uses the embedded default.
func New(generator Generator, prompt *Prompt) *Composer {
	if prompt == nil {
		prompt = DefaultPrompt()
	}
	return &Composer{generator: generator, prompt: prompt}
}

// Compose generates a message for one profile
func (c *Composer) Compose(ctx context.Context, pr profile.Profile, tone Tone) Outcome {
	text, err := c.prompt.Render(pr, tone)
	if err != nil {
		return Outcome{Err: errs.New(errs.ErrorTypeParsing, "%v", err)}
	}

	generated, err := c.generator.Complete(ctx, text)
	if err != nil {
		return Outcome{Err: asTagged(err)}
	}

	return Outcome{Text: table.NormalizeNewlines(strings.TrimSpace(generated))}
}

// asTagged keeps tagged errors as they are and files anything else as unknown
func asTagged(err error) *errs.Error {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &errs.Error{Type: errs.ErrorTypeUnknown, Message: err.Error()}
}
