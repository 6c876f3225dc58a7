package composer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "igdm/pkg/errors"
	"igdm/pkg/profile"
)

var alice = profile.Profile{
	Username: "alice",
	Bio:      "Sample bio from alice",
	Caption:  "Latest post caption by alice",
}

func TestParseTone(t *testing.T) {
	for _, tone := range Tones {
		parsed, err := ParseTone(string(tone))
		require.NoError(t, err)
		assert.Equal(t, tone, parsed)
	}

	_, err := ParseTone("friendly")
	assert.Error(t, err, "labels are case-sensitive")
	_, err = ParseTone("Sarcastic")
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	want := "\nYou're a social media strategist. Write a friendly and high-converting DM for an Instagram creator.\n\n" +
		"Bio: Sample bio from alice\n" +
		"Last Post: Latest post caption by alice\n" +
		"Username: @alice\n\n" +
		"Make it sound human, helpful, and actionable.\n"

	assert.Equal(t, want, BuildPrompt(alice, ToneFriendly))
}

func TestPromptEmbedsLowerCaseTone(t *testing.T) {
	for _, tone := range Tones {
		text := BuildPrompt(alice, tone)
		assert.Contains(t, text, "Write a "+strings.ToLower(string(tone))+" and high-converting DM")
		assert.NotContains(t, text, string(tone)+" and")
	}
}

func TestCustomPrompt(t *testing.T) {
	p, err := NewPrompt("{{.Tone}}|{{.Username}}|{{.Bio}}|{{.Caption}}")
	require.NoError(t, err)

	text, err := p.Render(alice, ToneDirect)
	require.NoError(t, err)
	assert.Equal(t, "direct|alice|Sample bio from alice|Latest post caption by alice", text)

	_, err = NewPrompt("{{.Tone")
	assert.Error(t, err)

	broken, err := NewPrompt("{{.Followers}}")
	require.NoError(t, err)
	_, err = broken.Render(alice, ToneDirect)
	assert.Error(t, err)
}

func TestComposeSuccess(t *testing.T) {
	var seen string
	c := New(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		seen = prompt
		return "  Hi Alice!  \n", nil
	}), nil)

	out := c.Compose(context.Background(), alice, ToneHumorous)

	require.True(t, out.OK())
	assert.Equal(t, "Hi Alice!", out.Text)
	assert.Equal(t, "Hi Alice!", out.Display())
	assert.Contains(t, seen, "Write a humorous and")
	assert.Contains(t, seen, "Username: @alice")
}

func TestComposeNormalizesLineEndings(t *testing.T) {
	c := New(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "Hi Alice!\r\n\r\nLove your work.\r\n", nil
	}), nil)

	out := c.Compose(context.Background(), alice, ToneFriendly)

	require.True(t, out.OK())
	assert.Equal(t, "Hi Alice!\n\nLove your work.", out.Text)
}

func TestComposeTaggedFailure(t *testing.T) {
	c := New(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", &errs.Error{Type: errs.ErrorTypeAuth, Message: "Incorrect API key provided", Code: 401}
	}), nil)

	out := c.Compose(context.Background(), alice, ToneFriendly)

	require.False(t, out.OK())
	assert.Equal(t, errs.ErrorTypeAuth, out.Err.Type)
	assert.Equal(t, "[Error generating message: Incorrect API key provided]", out.Display())
}

func TestComposeUntaggedFailure(t *testing.T) {
	c := New(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("connection reset")
	}), nil)

	out := c.Compose(context.Background(), alice, ToneDirect)

	require.False(t, out.OK())
	assert.Equal(t, errs.ErrorTypeUnknown, out.Err.Type)
	assert.Regexp(t, `^\[Error generating message: .+\]$`, out.Display())
}

func TestComposeRenderFailure(t *testing.T) {
	p, err := NewPrompt("{{.Missing}}")
	require.NoError(t, err)

	called := false
	c := New(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		called = true
		return "", nil
	}), p)

	out := c.Compose(context.Background(), alice, ToneDirect)
	assert.False(t, out.OK())
	assert.False(t, called)
}
