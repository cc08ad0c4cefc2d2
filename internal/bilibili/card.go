package bilibili

import (
	"encoding/json"
	"errors"
	"strings"
)

// EmojiDetail maps a literal emoji token to its image URL.
type EmojiDetail struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Entry is one element of the outer feed envelope. The actual content lives in
// Card, an independently encoded JSON document; Desc and Display carry sideband
// metadata. Identifiers here routinely exceed 53-bit precision, so they are
// kept as json.Number instead of float64.
type Entry struct {
	Card    string       `json:"card"`
	Desc    EntryDesc    `json:"desc"`
	Display EntryDisplay `json:"display"`
}

// EntryDesc is the per-entry sideband block.
type EntryDesc struct {
	DynamicID   json.Number `json:"dynamic_id"`
	Timestamp   int64       `json:"timestamp"`
	UserProfile struct {
		Info struct {
			UName string `json:"uname"`
		} `json:"info"`
	} `json:"user_profile"`
}

// EntryDisplay holds rendering hints, most notably the emoji catalog.
type EntryDisplay struct {
	EmojiInfo struct {
		EmojiDetails []EmojiDetail `json:"emoji_details"`
	} `json:"emoji_info"`
}

// Card is a decoded nested payload: a loosely typed bag of optional fields
// whose presence signals the content type (video, article, repost, bangumi,
// live room, audio, mini-video, topic page). Accessors are nil-safe and a
// missing or mistyped field reads as absent, so fallback chains can read
// freely without panicking.
type Card map[string]any

// DecodeCard parses a nested card document. Numbers decode as json.Number so
// ids above 2^53 keep full precision.
func DecodeCard(s string) (Card, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("bilibili: empty card payload")
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var c Card
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return c, nil
}

// Str returns a field as a string. json.Number values format with their full
// literal precision; any other type reads as "".
func (c Card) Str(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// Int returns a numeric field as int64, or 0.
func (c Card) Int(key string) int64 {
	if n, ok := c[key].(json.Number); ok {
		if v, err := n.Int64(); err == nil {
			return v
		}
	}
	return 0
}

// Obj returns a nested object field, or nil when absent or not an object.
func (c Card) Obj(key string) Card {
	if m, ok := c[key].(map[string]any); ok {
		return Card(m)
	}
	return nil
}

// List returns an array field, or nil.
func (c Card) List(key string) []any {
	if l, ok := c[key].([]any); ok {
		return l
	}
	return nil
}

// Has reports whether the field is present at all.
func (c Card) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Effective picks the card the fallback chains run against: bangumi season
// metadata wins, then a nested "item" object if it resolves a title, then the
// card itself.
func (c Card) Effective() Card {
	if season := c.Obj("apiSeasonInfo"); season != nil {
		return season
	}
	if item := c.Obj("item"); Title(item) != "" {
		return item
	}
	return c
}

// Origin decodes the repost target, if any. A card without an "origin" field
// is not a repost. The nested document gets the same precision rules as the
// card itself.
func (c Card) Origin() (Card, error) {
	if obj := c.Obj("origin"); obj != nil {
		return obj, nil
	}
	s := c.Str("origin")
	if s == "" {
		return nil, nil
	}
	return DecodeCard(s)
}

// OrItem returns the nested "item" object when present, else the card itself.
// Repost targets wrap their content this way for some content types.
func (c Card) OrItem() Card {
	if item := c.Obj("item"); item != nil {
		return item
	}
	return c
}
