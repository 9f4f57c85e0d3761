package kickbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/providers"
)

// ErrUnauthorized matches errors for rejected credentials or an expired session.
var ErrUnauthorized = providers.ErrUnauthorized

// Config controls how the client reaches the Kickbase API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the Kickbase JSON API and maps responses to domain models.
// It is safe for concurrent use once Login has succeeded.
type Client struct {
	baseURL    string
	httpClient httpDoer
	now        func() time.Time

	mu       sync.RWMutex
	token    string
	username string
	password string
}

// NewClient constructs a Kickbase client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		now:        time.Now,
	}
}

var _ providers.Source = (*Client)(nil)

// Login authenticates and returns the user plus every league the user belongs to.
// The credentials are kept so an expired session can be renewed once per request.
func (c *Client) Login(ctx context.Context, username, password string) (domain.User, []domain.League, error) {
	body, err := json.Marshal(loginRequest{Email: username, Password: password, Ext: true})
	if err != nil {
		return domain.User{}, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/login", bytes.NewReader(body))
	if err != nil {
		return domain.User{}, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var payload loginResponse
	if err := c.send(req, &payload); err != nil {
		return domain.User{}, nil, fmt.Errorf("kickbase: login: %w", err)
	}

	c.mu.Lock()
	c.token = payload.Token
	c.username = username
	c.password = password
	c.mu.Unlock()

	leagues := make([]domain.League, 0, len(payload.Leagues))
	for _, l := range payload.Leagues {
		leagues = append(leagues, mapLeague(l))
	}
	return mapUser(payload.User), leagues, nil
}

// FetchFeedPage returns the feed page starting at offset.
func (c *Client) FetchFeedPage(ctx context.Context, league domain.League, offset int) ([]domain.FeedItem, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(offset))

	var payload feedResponse
	if err := c.get(ctx, leaguePath(league, "feed"), q, &payload); err != nil {
		return nil, fmt.Errorf("kickbase: feed: %w", err)
	}
	items := make([]domain.FeedItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, mapFeedItem(it))
	}
	return items, nil
}

// FetchChatPage returns one chat page and the token of the following page.
func (c *Client) FetchChatPage(ctx context.Context, league domain.League, pageSize int, token string) ([]domain.ChatItem, string, error) {
	if pageSize <= 0 {
		pageSize = defaultChatPage
	}
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(pageSize))
	if token != "" {
		q.Set("nextPageToken", token)
	}

	var payload chatResponse
	if err := c.get(ctx, leaguePath(league, "chat"), q, &payload); err != nil {
		return nil, "", fmt.Errorf("kickbase: chat: %w", err)
	}
	items := make([]domain.ChatItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, mapChatItem(it))
	}
	return items, payload.NextPageToken, nil
}

// FetchMarket returns the current transfer market. Date is left unset.
func (c *Client) FetchMarket(ctx context.Context, league domain.League) (domain.MarketSnapshot, error) {
	var payload marketResponse
	if err := c.get(ctx, leaguePath(league, "market"), nil, &payload); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("kickbase: market: %w", err)
	}
	return mapMarket(payload), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dest any) error {
	err := c.authorizedGet(ctx, path, q, dest)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	c.mu.RLock()
	username, password := c.username, c.password
	c.mu.RUnlock()
	if username == "" {
		return err
	}
	if _, _, loginErr := c.Login(ctx, username, password); loginErr != nil {
		return loginErr
	}
	return c.authorizedGet(ctx, path, q, dest)
}

func (c *Client) authorizedGet(ctx context.Context, path string, q url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if len(q) > 0 {
		req.URL.RawQuery = q.Encode()
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: authCookie, Value: token})
	}
	return c.send(req, dest)
}

func (c *Client) send(req *http.Request, dest any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &providers.RateLimitError{
			Source:     sourceName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			Message:    "kickbase rate limited",
		}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &providers.StatusError{
			Source:     sourceName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func leaguePath(league domain.League, resource string) string {
	return "/leagues/" + url.PathEscape(league.ID) + "/" + resource
}
