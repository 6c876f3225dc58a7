package profile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	errs "igdm/pkg/errors"
)

// directoryFile is the on-disk layout of a profile directory
type directoryFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DirectoryResolver serves profiles collected ahead of time into a YAML
// file. Lookups are case-insensitive on the username.
type DirectoryResolver struct {
	profiles map[string]Profile
}

// NewDirectoryResolver builds a resolver from already loaded profiles
func NewDirectoryResolver(profiles []Profile) *DirectoryResolver {
	d := &DirectoryResolver{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		d.profiles[strings.ToLower(p.Username)] = p
	}
	return d
}

// LoadDirectory reads a profile directory file
func LoadDirectory(path string) (*DirectoryResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile directory: %w", err)
	}

	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile directory: %w", err)
	}

	for i, p := range file.Profiles {
		if strings.TrimSpace(p.Username) == "" {
			return nil, fmt.Errorf("profile directory entry %d has no username", i+1)
		}
		file.Profiles[i].Username = strings.TrimPrefix(strings.TrimSpace(p.Username), "@")
	}

	return NewDirectoryResolver(file.Profiles), nil
}

// Len returns the number of known profiles
func (d *DirectoryResolver) Len() int {
	return len(d.profiles)
}

func (d *DirectoryResolver) Resolve(ctx context.Context, username string) Result {
	if err := ctx.Err(); err != nil {
		return Failed(username, errs.New(errs.ErrorTypeUnknown, "lookup cancelled: %v", err))
	}

	p, ok := d.profiles[strings.ToLower(username)]
	if !ok {
		return Failed(username, errs.New(errs.ErrorTypeNotFound, "no profile for @%s", username))
	}

	// Keep the caller's spelling so rows match the input order and casing
	p.Username = username
	return Found(p)
}
