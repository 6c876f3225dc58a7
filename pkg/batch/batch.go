// Package batch runs message generation over a list of usernames.
//
// A run is sequential and keeps input order. Every username yields exactly
// one row; a failed lookup or generation is recorded in that row and the run
// moves on.
package batch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"igdm/pkg/composer"
	"igdm/pkg/logger"
	"igdm/pkg/profile"
	"igdm/pkg/table"
)

var (
	ErrMissingCredential = errors.New("please enter your OpenAI API key")
	ErrNoUsernames       = errors.New("no usernames provided")
)

// Session is everything one run needs from the caller
type Session struct {
	RunID     string
	APIKey    string
	Tone      composer.Tone
	Usernames []string
}

// NewSession creates a session with a fresh run ID
func NewSession(apiKey string, tone composer.Tone, usernames []string) Session {
	return Session{
		RunID:     uuid.NewString(),
		APIKey:    apiKey,
		Tone:      tone,
		Usernames: usernames,
	}
}

// Validate checks the run preconditions
func (s Session) Validate() error {
	if strings.TrimSpace(s.APIKey) == "" {
		return ErrMissingCredential
	}
	if len(s.Usernames) == 0 {
		return ErrNoUsernames
	}
	return nil
}

// Observer is called after each row is produced
type Observer func(index, total int, row table.Row)

// Runner drives a batch run
type Runner struct {
	Resolver profile.Resolver
	Composer *composer.Composer
	Logger   logger.Logger
	Observer Observer
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(resolver profile.Resolver, c *composer.Composer, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Runner{Resolver: resolver, Composer: c, Logger: log}
}

// Run produces one row per username, in order. It fails only when the
// session preconditions are not met; per-row failures are in the table.
func (r *Runner) Run(ctx context.Context, s Session) (*table.Table, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	if s.Tone == "" {
		s.Tone = composer.ToneFriendly
	}

	log := r.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.WithField("run_id", s.RunID)

	total := len(s.Usernames)
	log.InfoWithFields("Starting batch run", map[string]interface{}{
		"usernames": total,
		"tone":      s.Tone.String(),
	})

	start := time.Now()
	result := table.New(total)
	for i, username := range s.Usernames {
		rowStart := time.Now()
		row, err := r.generate(ctx, username, s.Tone)
		logger.LogGeneration(log, username, i, total, time.Since(rowStart), err)

		result.Append(row)
		if r.Observer != nil {
			r.Observer(i, total, row)
		}
	}

	logger.LogRunSummary(log, s.RunID, result.Len(), result.Failed(), time.Since(start))
	return result, nil
}

func (r *Runner) generate(ctx context.Context, username string, tone composer.Tone) (table.Row, error) {
	row := table.Row{Username: table.Handle(username)}

	resolved := r.Resolver.Resolve(ctx, username)
	if !resolved.OK() {
		outcome := composer.Outcome{Err: resolved.Err}
		row.GeneratedDM = outcome.Display()
		row.Failed = true
		return row, resolved.Err
	}

	row.Bio = resolved.Profile.Bio
	row.LastPost = resolved.Profile.Caption

	outcome := r.Composer.Compose(ctx, resolved.Profile, tone)
	row.GeneratedDM = outcome.Display()
	if !outcome.OK() {
		row.Failed = true
		return row, outcome.Err
	}
	return row, nil
}
