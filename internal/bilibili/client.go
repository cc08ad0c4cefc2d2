package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Upstream envelope codes that make the payload body unusable. They are
// classified before any normalization is attempted.
const (
	codeCredentialExpired = -6
	codeRequestRejected   = 4100000
)

var (
	// ErrCredentialExpired means the account cookie was rejected as stale.
	// The caller has to refresh the configured cookie; retrying won't help.
	ErrCredentialExpired = errors.New("bilibili: account cookie has expired")
	// ErrUpstreamRequest means the upstream refused the request outright.
	ErrUpstreamRequest = errors.New("bilibili: upstream rejected the request")
)

// type_list bitmask selecting every dynamic type.
const dynamicAllTypes = "268435455"

// Client is a minimal Bilibili API client. The dynamic feed endpoints require
// a logged-in session cookie for the requesting account.
type Client struct {
	apiBaseURL    string // dynamic feed service (api.vc.bilibili.com)
	webAPIBaseURL string // account metadata (api.bilibili.com)
	webBaseURL    string // article pages (www.bilibili.com)
	client        *http.Client
}

// NewClient creates a Bilibili client. Empty base URLs fall back to the
// public endpoints.
func NewClient(apiBaseURL, webAPIBaseURL, webBaseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(apiBaseURL) == "" {
		apiBaseURL = "https://api.vc.bilibili.com"
	}
	if strings.TrimSpace(webAPIBaseURL) == "" {
		webAPIBaseURL = "https://api.bilibili.com"
	}
	if strings.TrimSpace(webBaseURL) == "" {
		webBaseURL = "https://www.bilibili.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiBaseURL:    strings.TrimRight(apiBaseURL, "/"),
		webAPIBaseURL: strings.TrimRight(webAPIBaseURL, "/"),
		webBaseURL:    strings.TrimRight(webBaseURL, "/"),
		client:        &http.Client{Timeout: timeout},
	}
}

// feedEnvelope is the outer response of the dynamic feed endpoints.
type feedEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Cards []Entry `json:"cards"`
	} `json:"data"`
}

// DynamicFeed fetches the followed-accounts activity feed for uid, every
// dynamic type included. Entries come back in upstream order.
func (c *Client) DynamicFeed(ctx context.Context, uid, cookie string) ([]Entry, error) {
	return c.feed(ctx, uid, cookie, url.Values{"uid": {uid}, "type_list": {dynamicAllTypes}})
}

// VideoFeed fetches only the video dynamics of followed accounts.
func (c *Client) VideoFeed(ctx context.Context, uid, cookie string) ([]Entry, error) {
	return c.feed(ctx, uid, cookie, url.Values{"uid": {uid}, "type": {"8"}})
}

func (c *Client) feed(ctx context.Context, uid, cookie string, q url.Values) ([]Entry, error) {
	endpoint := c.apiBaseURL + "/dynamic_svr/v1/dynamic_svr/dynamic_new?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", "https://space.bilibili.com/"+uid+"/")
	req.Header.Set("Cookie", cookie)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bilibili: dynamic feed status %d", resp.StatusCode)
	}
	var env feedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("bilibili: decode feed envelope: %w", err)
	}
	switch env.Code {
	case codeCredentialExpired:
		return nil, fmt.Errorf("uid %s: %w", uid, ErrCredentialExpired)
	case codeRequestRejected:
		return nil, fmt.Errorf("uid %s: %w", uid, ErrUpstreamRequest)
	}
	return env.Data.Cards, nil
}

// Username fetches the display name for an account.
func (c *Client) Username(ctx context.Context, uid string) (string, error) {
	endpoint := c.webAPIBaseURL + "/x/web-interface/card?" + url.Values{"mid": {uid}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", "https://space.bilibili.com/"+uid+"/")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bilibili: account card status %d", resp.StatusCode)
	}
	var env struct {
		Code int `json:"code"`
		Data struct {
			Card struct {
				Name string `json:"name"`
			} `json:"card"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", err
	}
	if env.Code != 0 {
		return "", fmt.Errorf("bilibili: account card code %d", env.Code)
	}
	return env.Data.Card.Name, nil
}

var articleHolderRe = regexp.MustCompile(`(?s)<div[^>]*id="read-article-holder"[^>]*>(.*?)</div>`)

// Article fetches the expanded body of a column article (cvid) by scraping
// the read page. Column dynamics only carry a short summary in the feed. The
// requesting account's cookie goes along when available; some articles render
// differently for anonymous readers.
func (c *Client) Article(ctx context.Context, cvid, cookie string) (string, error) {
	endpoint := c.webBaseURL + "/read/cv" + cvid
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Referer", "https://www.bilibili.com/read/cv"+cvid)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bilibili: article cv%s status %d", cvid, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	m := articleHolderRe.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("bilibili: article cv%s: no article body found", cvid)
	}
	return string(m[1]), nil
}
