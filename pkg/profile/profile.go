// Package profile resolves usernames into the descriptive data used to
// personalize a message.
//
// Resolver is the seam for a real lookup backend. The default
// PlaceholderResolver fabricates deterministic text from the username;
// DirectoryResolver serves profiles from a local YAML file. Failures are
// reported as tagged results rather than aborting the batch.
package profile

import (
	"context"

	errs "igdm/pkg/errors"
)

// Profile is the resolved data for one username
type Profile struct {
	Username string `yaml:"username" json:"username"`
	Bio      string `yaml:"bio" json:"bio"`
	Caption  string `yaml:"caption" json:"caption"`
}

// Result is either a Profile or a tagged error
type Result struct {
	Profile Profile
	Err     *errs.Error
}

// OK reports whether the lookup succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Found wraps a profile in a successful result
func Found(p Profile) Result {
	return Result{Profile: p}
}

// Failed builds a failed result that still carries the username
func Failed(username string, err *errs.Error) Result {
	return Result{Profile: Profile{Username: username}, Err: err}
}

// Resolver maps a username to a profile
type Resolver interface {
	Resolve(ctx context.Context, username string) Result
}

// ResolverFunc adapts a plain function to the Resolver interface
type ResolverFunc func(ctx context.Context, username string) Result

func (f ResolverFunc) Resolve(ctx context.Context, username string) Result {
	return f(ctx, username)
}
