package bilibili

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilifeed/internal/model"
)

// Metadata resolves sideband data the feed payload does not carry: account
// display names, and full article bodies for column dynamics.
type Metadata interface {
	Username(ctx context.Context, uid string) (string, error)
	Article(ctx context.Context, cvid, uid string) (string, error)
}

// Options are the caller-facing feed switches. All default to off.
type Options struct {
	ShowEmoji      bool // expand emoji tokens into inline images
	DisableEmbed   bool // suppress iframe and video embeds
	DisplayArticle bool // replace column summaries with the full article body
}

// Assembler turns decoded feed entries into normalized items.
type Assembler struct {
	Metadata Metadata
	Options  Options
}

// bounded fan-out for per-entry work
const maxWorkers = 8

// Items normalizes a dynamic-feed batch. Entries run concurrently and results
// are collected positionally, so the output keeps the upstream order no matter
// how per-entry fetches interleave. An entry that fails to decode or expand is
// skipped rather than failing the batch; the skip count is returned.
func (a *Assembler) Items(ctx context.Context, uid string, entries []Entry) ([]model.Item, int) {
	results := make([]*model.Item, len(entries))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	for i := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			item, err := a.buildItem(ctx, uid, entries[i])
			if err != nil {
				slog.Warn("assemble: skipping entry", "uid", uid, "index", i, "error", err)
				return
			}
			results[i] = item
		}(i)
	}
	wg.Wait()

	items := make([]model.Item, 0, len(entries))
	skipped := 0
	for _, r := range results {
		if r == nil {
			skipped++
			continue
		}
		items = append(items, *r)
	}
	return items, skipped
}

func (a *Assembler) buildItem(ctx context.Context, uid string, e Entry) (*model.Item, error) {
	parsed, err := DecodeCard(e.Card)
	if err != nil {
		return nil, fmt.Errorf("decode card: %w", err)
	}
	data := parsed.Effective()
	origin, err := parsed.Origin()
	if err != nil {
		// A malformed repost target degrades to "not a repost"; the
		// entry itself is still usable.
		slog.Debug("assemble: malformed origin card", "uid", uid, "error", err)
		origin = nil
	}

	imgs := Images(data)
	if origin != nil {
		imgs += Images(origin.OrItem())
	}
	video := ""
	if !a.Options.DisableEmbed {
		video = VideoBlock(data)
	}

	text := Description(data)
	if a.Options.ShowEmoji && len(e.Display.EmojiInfo.EmojiDetails) > 0 {
		text = ExpandEmoji(text, e.Display.EmojiInfo.EmojiDetails)
	}
	if a.Options.DisplayArticle && a.Metadata != nil && len(data.List("image_urls")) > 0 {
		body, err := a.Metadata.Article(ctx, data.Str("id"), uid)
		if err != nil {
			return nil, fmt.Errorf("expand article cv%s: %w", data.Str("id"), err)
		}
		text = body
	}

	desc := parsed.Str("new_desc")
	if desc == "" {
		desc = text
	}
	if desc == "" {
		desc = Description(data)
	}

	if imgs != "" {
		imgs = "<br>" + imgs
	}
	if video != "" {
		video = "<br>" + video
	}

	return &model.Item{
		Title:  Title(data),
		Author: e.Desc.UserProfile.Info.UName,
		Description: desc +
			RepostBlock(origin) +
			IframeBlock(data, a.Options.DisableEmbed) +
			IframeBlock(origin, a.Options.DisableEmbed) +
			imgs +
			video,
		PubDate: pubDate(e.Desc.Timestamp),
		Link:    DynamicLink(data, e),
	}, nil
}

// VideoItems normalizes a video-only feed batch. Video cards are flat, so no
// secondary fetches happen and entries are mapped in place, keeping order.
func (a *Assembler) VideoItems(uid string, entries []Entry) ([]model.Item, int) {
	items := make([]model.Item, 0, len(entries))
	skipped := 0
	for i, e := range entries {
		card, err := DecodeCard(e.Card)
		if err != nil {
			slog.Warn("assemble: skipping video entry", "uid", uid, "index", i, "error", err)
			skipped++
			continue
		}
		desc := card.Str("desc")
		if !a.Options.DisableEmbed {
			desc += "<br><br>" + Iframe(card.Str("aid"))
		}
		desc += "<br>" + imgTag(card.Str("pic"))
		items = append(items, model.Item{
			Title:       card.Str("title"),
			Author:      e.Desc.UserProfile.Info.UName,
			Description: desc,
			PubDate:     pubDate(card.Int("pubdate")),
			Link:        VideoLink(card),
		})
	}
	return items, skipped
}

// pubDate formats an epoch-seconds timestamp as an RFC1123 GMT string.
func pubDate(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(http.TimeFormat)
}
