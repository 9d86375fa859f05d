package twitter

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the base URL of the Twitter REST API
	DefaultBaseURL = "https://api.twitter.com"

	// TokenEndpoint issues app-only bearer tokens
	TokenEndpoint = "/oauth2/token"

	// UserShowEndpoint resolves a screen name to a user object (v1.1, user context)
	UserShowEndpoint = "/1.1/users/show.json"

	// FollowersEndpoint is the v2 followers listing, formatted with the user id
	FollowersEndpoint = "/2/users/%s/followers"

	// MaxUsernameLength is the longest screen name Twitter accepts
	MaxUsernameLength = 15

	// MaxFollowersPageSize is the largest max_results the followers endpoint accepts
	MaxFollowersPageSize = 1000
)

// TokenURL returns the client-credentials token URL
func TokenURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + TokenEndpoint
}

// UserLookupURL returns the user lookup URL for a screen name
func UserLookupURL(baseURL, screenName string) string {
	params := url.Values{}
	params.Set("screen_name", screenName)

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), UserShowEndpoint, params.Encode())
}

// FollowersURL returns the followers URL for an account id.
// A maxResults of zero leaves the page size to the API.
func FollowersURL(baseURL, userID string, maxResults int) string {
	u := strings.TrimRight(baseURL, "/") + fmt.Sprintf(FollowersEndpoint, url.PathEscape(userID))

	if maxResults > 0 {
		if maxResults > MaxFollowersPageSize {
			maxResults = MaxFollowersPageSize
		}
		params := url.Values{}
		params.Set("max_results", strconv.Itoa(maxResults))
		u += "?" + params.Encode()
	}

	return u
}

// SanitizeUsername trims whitespace and a single leading @
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	username = strings.TrimPrefix(username, "@")
	return strings.TrimSpace(username)
}

// IsValidUsername reports whether username is a well formed screen name
func IsValidUsername(username string) bool {
	if len(username) == 0 || len(username) > MaxUsernameLength {
		return false
	}

	for _, r := range username {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}

	return true
}

// EncodeBasicCredentials builds the Basic authorization value for the token exchange
func EncodeBasicCredentials(consumerKey, consumerSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(consumerKey + ":" + consumerSecret))
}
