package bilibili

import (
	"net/url"
	"strings"
)

// Iframe renders the player embed for a video. The player resolves the
// numeric aid for every upload, old or new, so embeds don't need the bvid
// cutover rule that links do.
func Iframe(aid string) string {
	src := "https://player.bilibili.com/player.html?aid=" + aid + "&high_quality=1&autoplay=0"
	return `<iframe src="` + src + `" width="650" height="477" scrolling="no" border="0" frameborder="no" framespacing="0" allowfullscreen="true"></iframe>`
}

// IframeBlock wraps the player embed with the breaks the description layout
// expects. Empty when the card has no aid or embedding is disabled.
func IframeBlock(c Card, disabled bool) string {
	if disabled || c == nil {
		return ""
	}
	aid := c.Str("aid")
	if aid == "" || aid == "0" {
		return ""
	}
	return "<br><br>" + Iframe(aid) + "<br>"
}

// VideoBlock renders the inline player for a mini-video card. The upstream
// hands out http URLs that usually also serve https, but the https endpoint
// occasionally times out, so both sources are offered to maximize playback.
func VideoBlock(c Card) string {
	raw := c.Str("video_playurl")
	if raw == "" {
		return ""
	}
	playURL := raw
	if u, err := url.PathUnescape(raw); err == nil {
		playURL = u
	}
	secure := playURL
	if strings.HasPrefix(playURL, "http:") {
		secure = "https:" + strings.TrimPrefix(playURL, "http:")
	}
	return `<video width="` + c.Str("width") + `" height="` + c.Str("height") + `" controls>` +
		`<source src="` + secure + `">` +
		`<source src="` + playURL + `">` +
		`</video>`
}
