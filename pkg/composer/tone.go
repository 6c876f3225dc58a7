package composer

import (
	"fmt"
	"strings"
)

// Tone is the stylistic register applied to every message in a run
type Tone string

const (
	ToneFriendly Tone = "Friendly"
	ToneDirect   Tone = "Direct"
	ToneHumorous Tone = "Humorous"
)

// Tones lists the supported tones in display order
var Tones = []Tone{ToneFriendly, ToneDirect, ToneHumorous}

// ParseTone accepts exactly one of the display labels
func ParseTone(label string) (Tone, error) {
	for _, t := range Tones {
		if string(t) == label {
			return t, nil
		}
	}
	names := make([]string, len(Tones))
	for i, t := range Tones {
		names[i] = string(t)
	}
	return "", fmt.Errorf("unknown tone %q (expected one of %s)", label, strings.Join(names, ", "))
}

// Lower is the form embedded in prompt text
func (t Tone) Lower() string {
	return strings.ToLower(string(t))
}

func (t Tone) String() string {
	return string(t)
}
