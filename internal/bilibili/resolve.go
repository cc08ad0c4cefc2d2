package bilibili

import "strings"

// Field resolution follows ordered fallback chains: candidates are tried
// left to right, the first non-empty value wins, and a fully absent chain
// yields "" rather than an error. Atypical entries are expected to miss most
// fields.

// Title resolves the entry title.
func Title(c Card) string {
	for _, k := range []string{"title", "description", "content"} {
		if v := c.Str(k); v != "" {
			return v
		}
	}
	return c.Obj("vest").Str("content")
}

// Description resolves the entry body text.
func Description(c Card) string {
	for _, k := range []string{"dynamic", "desc", "description", "content", "summary"} {
		if v := c.Str(k); v != "" {
			return v
		}
	}
	if v := vestSketch(c); v != "" {
		return v
	}
	return c.Str("intro")
}

// vestSketch joins the vest text with the sketch title/detail lines used by
// topic-page dynamics. Empty when neither contributes any text.
func vestSketch(c Card) string {
	vest := c.Obj("vest").Str("content")
	sketch := c.Obj("sketch")
	if sketch == nil {
		return vest
	}
	title, detail := sketch.Str("title"), sketch.Str("desc_text")
	if vest == "" && title == "" && detail == "" {
		return ""
	}
	return vest + "<br>" + title + "<br>" + detail
}

// AuthorName resolves the poster name, which moves around with content type.
func AuthorName(c Card) string {
	if v := c.Str("uname"); v != "" {
		return v
	}
	if v := c.Obj("author").Str("name"); v != "" {
		return v
	}
	if v := c.Obj("upper").Str("name"); v != "" {
		return v
	}
	if user := c.Obj("user"); user != nil {
		if v := user.Str("uname"); v != "" {
			return v
		}
		if v := user.Str("name"); v != "" {
			return v
		}
	}
	return c.Obj("owner").Str("name")
}

// SeasonNote annotates a repost of a bangumi episode with its season title.
func SeasonNote(c Card) string {
	if c == nil {
		return ""
	}
	title := c.Obj("apiSeasonInfo").Str("title")
	if title == "" {
		return ""
	}
	note := "Reposted from: " + title
	if idx := c.Str("index_title"); idx != "" {
		note += "<br>" + idx
	}
	return note
}

// RepostBlock renders the quoted block for a repost target. It follows the
// reposting entry's own description, hence the leading break. An origin whose
// author cannot be resolved degrades to the season note, then to "".
func RepostBlock(origin Card) string {
	if origin == nil {
		return ""
	}
	name := AuthorName(origin)
	if name == "" {
		return SeasonNote(origin)
	}
	target := origin.OrItem()
	title := target.Str("title")
	if title != "" {
		title += "<br>"
	}
	return "<br><br>Reposted from: @" + name + ": " + title + Description(target)
}

// Images collects every cover/picture fragment the card carries, in a fixed
// priority order. The sources are not mutually exclusive: every match is
// appended.
func Images(c Card) string {
	var b strings.Builder
	// dynamic pictures
	for _, p := range c.List("pictures") {
		if pic, ok := p.(map[string]any); ok {
			if src := Card(pic).Str("img_src"); src != "" {
				b.WriteString(imgTag(src))
			}
		}
	}
	// article covers
	for _, u := range c.List("image_urls") {
		if s, ok := u.(string); ok && s != "" {
			b.WriteString(imgTag(s))
		}
	}
	// video cover
	if pic := c.Str("pic"); pic != "" {
		b.WriteString(imgTag(pic))
	}
	// audio/bangumi/live-room cover, unclipped variant preferred
	if cover := c.Obj("cover"); cover != nil {
		if u := cover.Str("unclipped"); u != "" {
			b.WriteString(imgTag(u))
		}
	} else if u := c.Str("cover"); u != "" {
		b.WriteString(imgTag(u))
	}
	// topic page cover
	if u := c.Obj("sketch").Str("cover_url"); u != "" {
		b.WriteString(imgTag(u))
	}
	return b.String()
}

func imgTag(src string) string {
	return `<img src="` + src + `">`
}
