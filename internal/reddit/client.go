// Package reddit lee la actividad publica de una cuenta usando la API OAuth de Reddit
// en modo application-only (client credentials).
package reddit

import (
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

	"go.uber.org/zap"

	"reddit-persona/internal/domain"
)

// ErrNotFound se devuelve cuando la cuenta no existe, esta suspendida o no es visible.
var ErrNotFound = errors.New("reddit account not found")

// MaxListingLimit es el maximo de items que Reddit devuelve por pagina.
const MaxListingLimit = 100

// Options agrupa credenciales y endpoints.
type Options struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	BaseURL      string
	AuthURL      string
	Timeout      time.Duration
}

// Client es un cliente minimo de la API de Reddit.
type Client struct {
	opts   Options
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://oauth.reddit.com"
	}
	if opts.AuthURL == "" {
		opts.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger,
	}
}

// Account devuelve los metadatos publicos de la cuenta.
func (c *Client) Account(ctx context.Context, handle string) (domain.Account, error) {
	var about struct {
		Kind string `json:"kind"`
		Data struct {
			ID           string  `json:"id"`
			Name         string  `json:"name"`
			CommentKarma int     `json:"comment_karma"`
			LinkKarma    int     `json:"link_karma"`
			CreatedUTC   float64 `json:"created_utc"`
			IconImg      string  `json:"icon_img"`
			IsSuspended  bool    `json:"is_suspended"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/user/"+url.PathEscape(handle)+"/about", nil, &about); err != nil {
		return domain.Account{}, err
	}
	if about.Data.IsSuspended {
		return domain.Account{}, fmt.Errorf("%w: %s is suspended", ErrNotFound, handle)
	}
	if about.Data.Name == "" {
		return domain.Account{}, fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	return domain.Account{
		Handle:       about.Data.Name,
		ID:           about.Data.ID,
		CommentKarma: about.Data.CommentKarma,
		LinkKarma:    about.Data.LinkKarma,
		CreatedUTC:   int64(about.Data.CreatedUTC),
		AvatarURL:    about.Data.IconImg,
	}, nil
}

// Comments devuelve los comentarios mas recientes sin decodificar.
func (c *Client) Comments(ctx context.Context, handle string, limit int) ([]Item, error) {
	return c.listing(ctx, "/user/"+url.PathEscape(handle)+"/comments", limit)
}

// Submissions devuelve los posts mas recientes sin decodificar.
func (c *Client) Submissions(ctx context.Context, handle string, limit int) ([]Item, error) {
	return c.listing(ctx, "/user/"+url.PathEscape(handle)+"/submitted", limit)
}

func (c *Client) listing(ctx context.Context, path string, limit int) ([]Item, error) {
	if limit <= 0 || limit > MaxListingLimit {
		limit = MaxListingLimit
	}
	q := url.Values{}
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(limit))

	var listing struct {
		Data struct {
			Children []Item `json:"children"`
		} `json:"data"`
	}
	if err := c.get(ctx, path, q, &listing); err != nil {
		return nil, err
	}
	items := listing.Data.Children
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status=%d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode >= 400:
		c.logger.Warn("reddit error status", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("reddit http error: status=%d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.opts.ClientID, c.opts.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token http error: status=%d", resp.StatusCode)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("reddit token response without access_token")
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl <= time.Minute {
		ttl = 2 * time.Minute
	}
	c.token = tr.AccessToken
	c.tokenExpiry = time.Now().Add(ttl - time.Minute)
	return c.token, nil
}
