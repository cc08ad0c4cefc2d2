package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"bilifeed/internal/bilibili"
	"bilifeed/internal/credential"
	"bilifeed/internal/model"
	"bilifeed/internal/rss"

	"github.com/gin-gonic/gin"
)

// FeedFetcher is the slice of the Bilibili client the handlers need.
type FeedFetcher interface {
	DynamicFeed(ctx context.Context, uid, cookie string) ([]bilibili.Entry, error)
	VideoFeed(ctx context.Context, uid, cookie string) ([]bilibili.Entry, error)
}

// FeedHandler serves the followed-accounts feed routes as RSS.
type FeedHandler struct {
	fetcher     FeedFetcher
	credentials credential.Store
	metadata    bilibili.Metadata
}

func NewFeedHandler(fetcher FeedFetcher, credentials credential.Store, metadata bilibili.Metadata) *FeedHandler {
	return &FeedHandler{fetcher: fetcher, credentials: credentials, metadata: metadata}
}

// Register mounts the feed routes on the engine.
func (h *FeedHandler) Register(r *gin.Engine) {
	r.GET("/bilibili/followings/dynamic/:uid", h.Dynamic)
	r.GET("/bilibili/followings/video/:uid", h.Video)
}

// Dynamic serves the full followed-accounts activity feed for an account.
func (h *FeedHandler) Dynamic(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.Param("uid")
	opts := parseOptions(c)

	cookie, err := h.credentials.Lookup(uid)
	if err != nil {
		h.fail(c, uid, err)
		return
	}
	entries, err := h.fetcher.DynamicFeed(ctx, uid, cookie)
	if err != nil {
		h.fail(c, uid, err)
		return
	}

	asm := &bilibili.Assembler{Metadata: h.metadata, Options: opts}
	items, skipped := asm.Items(ctx, uid, entries)
	if skipped > 0 {
		slog.Info("feed: partial batch", "uid", uid, "skipped", skipped)
	}

	name := h.displayName(ctx, uid)
	h.render(c, model.Feed{
		Title:       "Followed dynamics of " + name,
		Link:        "https://t.bilibili.com",
		Description: "Followed dynamics of " + name,
		Items:       items,
	})
}

// Video serves the video-only followed-accounts feed for an account.
func (h *FeedHandler) Video(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.Param("uid")
	opts := parseOptions(c)

	cookie, err := h.credentials.Lookup(uid)
	if err != nil {
		h.fail(c, uid, err)
		return
	}
	entries, err := h.fetcher.VideoFeed(ctx, uid, cookie)
	if err != nil {
		h.fail(c, uid, err)
		return
	}

	asm := &bilibili.Assembler{Metadata: h.metadata, Options: opts}
	items, skipped := asm.VideoItems(uid, entries)
	if skipped > 0 {
		slog.Info("feed: partial batch", "uid", uid, "skipped", skipped)
	}

	name := h.displayName(ctx, uid)
	h.render(c, model.Feed{
		Title:       "Followed videos of " + name,
		Link:        "https://t.bilibili.com/?tab=8",
		Description: "Followed videos of " + name,
		Items:       items,
	})
}

// displayName falls back to the raw uid when the metadata fetch fails; the
// feed body is still worth serving.
func (h *FeedHandler) displayName(ctx context.Context, uid string) string {
	name, err := h.metadata.Username(ctx, uid)
	if err != nil || name == "" {
		if err != nil {
			slog.Warn("feed: display name lookup failed", "uid", uid, "error", err)
		}
		return uid
	}
	return name
}

func (h *FeedHandler) render(c *gin.Context, feed model.Feed) {
	body, err := rss.Render(feed)
	if err != nil {
		h.fail(c, "", err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(body))
}

func (h *FeedHandler) fail(c *gin.Context, uid string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, credential.ErrMissing):
		status = http.StatusServiceUnavailable
	case errors.Is(err, bilibili.ErrCredentialExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, bilibili.ErrUpstreamRequest):
		status = http.StatusBadGateway
	}
	slog.Error("feed: request failed", "uid", uid, "path", c.FullPath(), "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseOptions reads the caller-facing switches from the query string. A
// parameter that is present counts as enabled unless it spells a false value.
func parseOptions(c *gin.Context) bilibili.Options {
	return bilibili.Options{
		ShowEmoji:      queryBool(c, "showEmoji"),
		DisableEmbed:   queryBool(c, "disableEmbed"),
		DisplayArticle: queryBool(c, "displayArticle"),
	}
}

func queryBool(c *gin.Context, key string) bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return false
	}
	switch v {
	case "0", "false", "no", "off":
		return false
	}
	return true
}
