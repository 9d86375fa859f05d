package followers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"twfollowers/internal/lookup"
	errs "twfollowers/pkg/errors"
	"twfollowers/pkg/logger"
	"twfollowers/pkg/storage"
	"twfollowers/pkg/twitter"
)

// Entry is one row of the report
type Entry struct {
	Username        string
	FollowersCount  int64
	ProfileImageURL string
}

// Failure is a lookup that did not produce an Entry
type Failure struct {
	Index    int
	Username string
	Err      error
}

// Reason returns the user facing cause of the failure
func (f Failure) Reason() string {
	var apiErr *errs.Error
	if errors.As(f.Err, &apiErr) {
		return apiErr.Message
	}
	return f.Err.Error()
}

// Report is the Follower List enriched with account details
type Report struct {
	Entries     []Entry
	Failures    []Failure
	Total       int
	GeneratedAt time.Time
}

// ErrorMessage joins every failure as "Error: <username>: <reason>; ..."
func (r *Report) ErrorMessage() string {
	if len(r.Failures) == 0 {
		return ""
	}

	parts := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Username, f.Reason()))
	}
	return "Error: " + strings.Join(parts, "; ")
}

// BuildReport loads the Follower List and looks up every username in it.
// Entries come back sorted by follower count, highest first; ties keep the
// order of the stored list.
func (s *Service) BuildReport(ctx context.Context) (*Report, error) {
	usernames, err := s.store.Load()
	if err != nil {
		return nil, s.loadError(err)
	}

	start := time.Now()
	report := &Report{
		Entries:     []Entry{},
		Failures:    []Failure{},
		Total:       len(usernames),
		GeneratedAt: start,
	}
	if len(usernames) == 0 {
		return report, nil
	}

	session := s.creds.UserSession()
	pool := lookup.NewPool(s.opts.Concurrency, lookup.LookupFunc(func(ctx context.Context, username string) (*twitter.User, error) {
		return s.api.LookupUser(ctx, session, username)
	}), s.limiter, s.logger)

	for _, r := range pool.Run(ctx, usernames) {
		if r.Err != nil {
			report.Failures = append(report.Failures, Failure{Index: r.Job.Index, Username: r.Job.Username, Err: r.Err})
			if s.opts.FailFast {
				break
			}
			continue
		}
		report.Entries = append(report.Entries, Entry{
			Username:        r.Job.Username,
			FollowersCount:  r.User.FollowersCount,
			ProfileImageURL: r.User.ProfileImageURLHTTPS,
		})
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].FollowersCount > report.Entries[j].FollowersCount
	})

	logger.LogMetrics(s.logger, "report", map[string]interface{}{
		"usernames": len(usernames),
		"entries":   len(report.Entries),
		"failures":  len(report.Failures),
		"fail_fast": s.opts.FailFast,
		"duration":  time.Since(start),
	})

	return report, nil
}

func (s *Service) loadError(err error) *errs.Error {
	var corrupt *storage.CorruptError
	switch {
	case errors.Is(err, storage.ErrNoData):
		return errs.Wrap(errs.ErrorTypeNoData, "No data found in "+s.store.Name(), err)
	case errors.As(err, &corrupt):
		s.logger.WithError(err).Error("Follower list is corrupt")
		return errs.Wrap(errs.ErrorTypeCorrupt, fmt.Sprintf("Follower list %s is corrupt", s.store.Name()), err)
	default:
		s.logger.WithError(err).Error("Failed to read follower list")
		return errs.Wrap(errs.ErrorTypeStorage, "Failed to read follower list", err)
	}
}
