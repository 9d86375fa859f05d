package followers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twfollowers/pkg/auth"
	errs "twfollowers/pkg/errors"
	"twfollowers/pkg/logger"
	"twfollowers/pkg/ratelimit"
	"twfollowers/pkg/twitter"
)

// Messages shown to the end user
const (
	MsgUsernameRequired = "Username is required"
	MsgInvalidUsername  = "Invalid username"
	MsgLookupFailed     = "Failed to retrieve user ID"
	MsgTokenFailed      = "Failed to obtain bearer token"
	MsgInvalidFollowers = "Error: invalid followers response"
	MsgStoreFailed      = "Failed to store follower list"
)

// API is the part of the Twitter client the service uses
type API interface {
	LookupUser(ctx context.Context, session twitter.UserSession, screenName string) (*twitter.User, error)
	ObtainBearerToken(ctx context.Context, app twitter.AppCredentials) (twitter.BearerToken, error)
	FetchFollowers(ctx context.Context, token twitter.BearerToken, userID string, maxResults int) (*twitter.FollowersPage, error)
}

// ListStore persists the Follower List
type ListStore interface {
	Save(usernames []string) error
	Load() ([]string, error)
	Name() string
}

// Options tune submission and report behaviour
type Options struct {
	// MaxResults is passed to the followers endpoint; 0 keeps the API default
	MaxResults int
	// Concurrency is the number of parallel account lookups in a report
	Concurrency int
	// FailFast stops a report at the first failed lookup
	FailFast bool
}

// Service runs submissions and builds reports
type Service struct {
	api     API
	store   ListStore
	creds   *auth.Credentials
	limiter ratelimit.Limiter
	logger  logger.Logger
	opts    Options
}

// NewService wires a Service; creds must already be validated
func NewService(api API, store ListStore, creds *auth.Credentials, limiter ratelimit.Limiter, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	return &Service{
		api:     api,
		store:   store,
		creds:   creds,
		limiter: limiter,
		logger:  log.WithField("component", "followers"),
		opts:    opts,
	}
}

// SubmissionResult describes a stored Follower List
type SubmissionResult struct {
	Username   string
	AccountID  string
	Followers  []string
	TotalCount int
	Skipped    int
}

// Submit resolves username, fetches its followers and replaces the stored
// Follower List. Any failure leaves the stored list untouched.
func (s *Service) Submit(ctx context.Context, username string) (*SubmissionResult, error) {
	username = twitter.SanitizeUsername(username)
	if username == "" {
		return nil, errs.New(errs.ErrorTypeValidation, MsgUsernameRequired)
	}
	if !twitter.IsValidUsername(username) {
		return nil, errs.New(errs.ErrorTypeValidation, MsgInvalidUsername)
	}

	log := s.logger.WithField("username", username)
	start := time.Now()

	user, err := s.api.LookupUser(ctx, s.creds.UserSession(), username)
	if err != nil {
		log.WithError(err).Warn("Account lookup failed")
		return nil, errs.Wrap(errs.ErrorTypeUpstream, MsgLookupFailed, err)
	}

	token, err := s.api.ObtainBearerToken(ctx, s.creds.AppCredentials())
	if err != nil {
		log.WithError(err).Warn("Bearer token exchange failed")
		return nil, errs.Wrap(errs.ErrorTypeUpstream, MsgTokenFailed, err)
	}

	page, err := s.api.FetchFollowers(ctx, token, user.IDStr, s.opts.MaxResults)
	if err != nil {
		log.WithError(err).Warn("Followers fetch failed")
		return nil, followersError(err)
	}

	usernames := page.Usernames()
	if err := s.store.Save(usernames); err != nil {
		log.WithError(err).Error("Failed to store follower list")
		return nil, errs.Wrap(errs.ErrorTypeStorage, MsgStoreFailed, err)
	}

	logger.LogMetrics(log, "submit", map[string]interface{}{
		"account_id":  user.IDStr,
		"stored":      len(usernames),
		"total_count": page.TotalCount,
		"skipped":     page.Skipped,
		"duration":    time.Since(start),
	})

	return &SubmissionResult{
		Username:   username,
		AccountID:  user.IDStr,
		Followers:  usernames,
		TotalCount: page.TotalCount,
		Skipped:    page.Skipped,
	}, nil
}

// followersError turns a followers fetch failure into the user facing error
func followersError(err error) *errs.Error {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Type == errs.ErrorTypeParsing:
			return errs.Wrap(errs.ErrorTypeUpstream, MsgInvalidFollowers, err)
		case apiErr.Code != 0:
			return errs.Wrap(errs.ErrorTypeUpstream, fmt.Sprintf("Error: %d", apiErr.Code), err)
		}
	}
	return errs.Wrap(errs.ErrorTypeUpstream, "Error: followers request failed", err)
}
