package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	errs "twfollowers/pkg/errors"
	"twfollowers/pkg/logger"
)

// Client talks to the Twitter REST API. Every call takes the credential
// variant it needs explicitly; the client itself holds no secrets.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// Option customises a Client
type Option func(*Client)

// WithBaseURL points the client at another API host, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent on every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.headers["User-Agent"] = ua
		}
	}
}

// NewClient creates a new API client
func NewClient(timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "twfollowers/1.0",
			"Accept":     "application/json",
		},
		baseURL: DefaultBaseURL,
		logger:  log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API host the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs req with hc after applying the configured headers
func (c *Client) doRequest(hc *http.Client, req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    redactURL(req.URL),
	})

	resp, err := hc.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      redactURL(req.URL),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "network error", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      redactURL(req.URL),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus accepts 200 only; anything else becomes a typed error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    responseURL(resp),
	}
	if resp.StatusCode >= 500 {
		c.logger.ErrorWithFields("upstream server error", fields)
	} else {
		c.logger.WarnWithFields("unexpected upstream status", fields)
	}

	return &errs.Error{
		Type:    errs.TypeForStatus(resp.StatusCode),
		Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
		Code:    resp.StatusCode,
	}
}

// readBody drains and closes the response body
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}
	return body, nil
}

// decodeJSON checks the status, then unmarshals the body into target
func (c *Client) decodeJSON(resp *http.Response, target interface{}) error {
	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return err
	}

	body, err := c.readBody(resp)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          responseURL(resp),
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	return nil
}

// LookupUser resolves a screen name through a user-context session
func (c *Client) LookupUser(ctx context.Context, session UserSession, screenName string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, UserLookupURL(c.baseURL, screenName), nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to create request", err)
	}

	resp, err := c.doRequest(c.userClient(ctx, session), req)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.decodeJSON(resp, &user); err != nil {
		c.logger.WarnWithFields("user lookup failed", map[string]interface{}{
			"screen_name": screenName,
			"error":       err.Error(),
		})
		return nil, err
	}

	if user.IDStr == "" && user.ID != 0 {
		user.IDStr = strconv.FormatInt(user.ID, 10)
	}
	if user.IDStr == "" {
		return nil, errs.New(errs.ErrorTypeParsing, "user object carries no id")
	}

	c.logger.DebugWithFields("user resolved", map[string]interface{}{
		"screen_name": screenName,
		"user_id":     user.IDStr,
		"followers":   user.FollowersCount,
	})

	return &user, nil
}

// userClient returns an HTTP client that signs requests with OAuth 1.0a
func (c *Client) userClient(ctx context.Context, session UserSession) *http.Client {
	cfg := oauth1.NewConfig(session.ConsumerKey, session.ConsumerSecret)
	token := oauth1.NewToken(session.AccessToken, session.AccessTokenSecret)

	hc := cfg.Client(context.WithValue(ctx, oauth1.HTTPClient, c.httpClient), token)
	hc.Timeout = c.httpClient.Timeout
	return hc
}

// ObtainBearerToken exchanges the app credentials for an app-only bearer token
func (c *Client) ObtainBearerToken(ctx context.Context, app AppCredentials) (BearerToken, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, TokenURL(c.baseURL), strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeUnknown, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Basic "+EncodeBasicCredentials(app.ConsumerKey, app.ConsumerSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := c.doRequest(c.httpClient, req)
	if err != nil {
		return "", err
	}

	var token tokenResponse
	if err := c.decodeJSON(resp, &token); err != nil {
		return "", err
	}

	if token.AccessToken == "" {
		c.logger.Warn("token response carries no access_token")
		return "", &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "token response carries no access_token",
			Code:    http.StatusOK,
		}
	}

	c.logger.Debug("bearer token obtained")
	return BearerToken(token.AccessToken), nil
}

// FetchFollowers fetches one page of followers for userID
func (c *Client) FetchFollowers(ctx context.Context, token BearerToken, userID string, maxResults int) (*FollowersPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, FollowersURL(c.baseURL, userID, maxResults), nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+string(token))

	resp, err := c.doRequest(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	body, err := c.readBody(resp)
	if err != nil {
		return nil, err
	}

	page, err := parseFollowersPage(body)
	if err != nil {
		c.logger.ErrorWithFields("failed to parse followers response", map[string]interface{}{
			"user_id":      userID,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse followers: %v", err),
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	fields := map[string]interface{}{
		"user_id":     userID,
		"count":       len(page.Followers),
		"total_count": page.TotalCount,
	}
	if page.Skipped > 0 {
		fields["skipped"] = page.Skipped
		c.logger.WarnWithFields("followers without username skipped", fields)
	} else {
		c.logger.DebugWithFields("followers fetched", fields)
	}

	return page, nil
}

// responseURL returns the redacted URL of the request behind resp
func responseURL(resp *http.Response) string {
	if resp.Request == nil {
		return ""
	}
	return redactURL(resp.Request.URL)
}

// redactURL strips the query string for logging
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
