package profile

import (
	"context"
	"fmt"
)

// PlaceholderResolver stands in for a real profile lookup. It never fails
// and derives every field from the username alone.
type PlaceholderResolver struct{}

// NewPlaceholderResolver creates the placeholder resolver
func NewPlaceholderResolver() *PlaceholderResolver {
	return &PlaceholderResolver{}
}

func (PlaceholderResolver) Resolve(_ context.Context, username string) Result {
	return Found(Profile{
		Username: username,
		Bio:      fmt.Sprintf("Sample bio from %s", username),
		Caption:  fmt.Sprintf("Latest post caption by %s", username),
	})
}
