// Package strava wraps the Strava REST API surface the sync and webhook
// paths depend on: OAuth token exchange/refresh, athlete profile and stats,
// paginated activity listings, activity detail, streams, and gear.
package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/couchproof/couchproof-backend/pkg/logger"
	"golang.org/x/oauth2"
)

const userAgent = "couchproof/1.0"

// ErrRateLimited is returned when Strava answers 429; callers stop the batch
// and report has_more instead of treating it as a failure.
var ErrRateLimited = errors.New("strava rate limit exceeded")

// ErrUnauthorized is returned on 401 responses, usually a revoked token.
var ErrUnauthorized = errors.New("strava token unauthorized")

// Client is a thin wrapper over the Strava v3 REST API. Access tokens are
// per-call because every request acts on behalf of a specific user.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	oauth       *oauth2.Config
	logger      *logger.Logger
	verifyToken string
}

// NewClient validates the configuration and builds the API wrapper.
func NewClient(cfg config.StravaConfig, logg *logger.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("strava client id and secret are required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing strava base url: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{"read,activity:read_all,profile:read_all"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthorizeURL,
			TokenURL: cfg.TokenURL,
		},
	}

	return &Client{
		baseURL:     base,
		http:        &http.Client{Timeout: 30 * time.Second},
		oauth:       oauthCfg,
		logger:      logg,
		verifyToken: cfg.VerifyToken,
	}, nil
}

// VerifyToken returns the shared secret for the webhook handshake.
func (c *Client) VerifyToken() string {
	if c == nil {
		return ""
	}
	return c.verifyToken
}

// AuthCodeURL builds the authorize redirect for the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// Exchange swaps an authorization code for a token pair.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging strava code: %w", err)
	}
	return token, nil
}

// Refresh obtains a fresh token pair from a refresh token. The caller decides
// when to refresh; no transparent retry happens here.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	seed := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Now().Add(-time.Hour)}
	token, err := c.oauth.TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing strava token: %w", err)
	}
	return token, nil
}

// GetAthlete fetches the authenticated athlete's profile.
func (c *Client) GetAthlete(ctx context.Context, accessToken string) (*Athlete, error) {
	var athlete Athlete
	if err := c.get(ctx, accessToken, "/athlete", nil, &athlete); err != nil {
		return nil, fmt.Errorf("getting athlete: %w", err)
	}
	return &athlete, nil
}

// GetAthleteStats fetches the provider-computed aggregate totals.
func (c *Client) GetAthleteStats(ctx context.Context, accessToken string, athleteID int64) (*AthleteStats, error) {
	var stats AthleteStats
	path := fmt.Sprintf("/athletes/%d/stats", athleteID)
	if err := c.get(ctx, accessToken, path, nil, &stats); err != nil {
		return nil, fmt.Errorf("getting athlete stats: %w", err)
	}
	return &stats, nil
}

// ListActivities fetches one page of the athlete's activities created after
// the watermark.
func (c *Client) ListActivities(ctx context.Context, accessToken string, after time.Time, page, perPage int) ([]SummaryActivity, error) {
	query := url.Values{}
	if !after.IsZero() {
		query.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var activities []SummaryActivity
	if err := c.get(ctx, accessToken, "/athlete/activities", query, &activities); err != nil {
		return nil, fmt.Errorf("listing activities page %d: %w", page, err)
	}
	return activities, nil
}

// GetActivity fetches the full detail for one activity.
func (c *Client) GetActivity(ctx context.Context, accessToken string, id int64) (*DetailedActivity, error) {
	var activity DetailedActivity
	path := fmt.Sprintf("/activities/%d", id)
	if err := c.get(ctx, accessToken, path, nil, &activity); err != nil {
		return nil, fmt.Errorf("getting activity %d: %w", id, err)
	}
	return &activity, nil
}

// GetActivityStreams fetches the raw time-series streams for an activity.
func (c *Client) GetActivityStreams(ctx context.Context, accessToken string, id int64) (StreamSet, error) {
	query := url.Values{}
	query.Set("keys", "time,distance,heartrate,watts,altitude,velocity_smooth,cadence")
	query.Set("key_by_type", "true")

	var streams StreamSet
	path := fmt.Sprintf("/activities/%d/streams", id)
	if err := c.get(ctx, accessToken, path, query, &streams); err != nil {
		return nil, fmt.Errorf("getting streams for activity %d: %w", id, err)
	}
	return streams, nil
}

// GetGear fetches one piece of gear by external id.
func (c *Client) GetGear(ctx context.Context, accessToken, gearID string) (*Gear, error) {
	var gear Gear
	if err := c.get(ctx, accessToken, "/gear/"+url.PathEscape(gearID), nil, &gear); err != nil {
		return nil, fmt.Errorf("getting gear %s: %w", gearID, err)
	}
	return &gear, nil
}

// Deauthorize revokes the application's access for the token.
func (c *Client) Deauthorize(ctx context.Context, accessToken string) error {
	u := *c.baseURL
	u.Path = "/oauth/deauthorize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("deauthorizing: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("deauthorizing: %s", resp.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, dest any) error {
	rel := &url.URL{Path: c.baseURL.Path + path}
	u := c.baseURL.ResolveReference(rel)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("strava responded %s: %s", resp.Status, truncate(body, 200))
	}

	if dest != nil && len(body) > 0 {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("decoding strava response: %w", err)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
