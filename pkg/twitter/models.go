package twitter

import (
	"bytes"
	"encoding/json"
)

// UserSession carries the four secrets of a user-context (OAuth 1.0a) session
type UserSession struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// AppCredentials are the consumer key and secret used for the token exchange
type AppCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
}

// BearerToken is an app-only access token
type BearerToken string

// User is the subset of the v1.1 user object the viewer needs
type User struct {
	ID                   int64  `json:"id"`
	IDStr                string `json:"id_str"`
	ScreenName           string `json:"screen_name"`
	Name                 string `json:"name"`
	FollowersCount       int64  `json:"followers_count"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
}

// tokenResponse is the body of a successful token exchange
type tokenResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
}

// Follower is one element of the followers listing
type Follower struct {
	ID       string
	Name     string
	Username string
}

// FollowersPage is the parsed followers response
type FollowersPage struct {
	Followers  []Follower
	TotalCount int
	NextToken  string

	// Skipped counts array elements that carried no usable username
	Skipped int
}

// Usernames returns the follower usernames in response order
func (p *FollowersPage) Usernames() []string {
	names := make([]string, 0, len(p.Followers))
	for _, f := range p.Followers {
		names = append(names, f.Username)
	}
	return names
}

type followersResponse struct {
	Data json.RawMessage `json:"data"`
	Meta *struct {
		ResultCount int    `json:"result_count"`
		TotalCount  int    `json:"total_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

// parseFollowersPage decodes a followers body. Only an array under "data"
// yields followers; any other shape yields an empty page.
func parseFollowersPage(body []byte) (*FollowersPage, error) {
	var resp followersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	page := &FollowersPage{Followers: []Follower{}}
	if resp.Meta != nil {
		page.TotalCount = resp.Meta.TotalCount
		page.NextToken = resp.Meta.NextToken
	}

	data := bytes.TrimSpace(resp.Data)
	if len(data) == 0 || data[0] != '[' {
		return page, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	for _, item := range items {
		var fields map[string]interface{}
		if err := json.Unmarshal(item, &fields); err != nil {
			page.Skipped++
			continue
		}
		username, _ := fields["username"].(string)
		if username == "" {
			page.Skipped++
			continue
		}
		id, _ := fields["id"].(string)
		name, _ := fields["name"].(string)
		page.Followers = append(page.Followers, Follower{ID: id, Name: name, Username: username})
	}

	return page, nil
}
