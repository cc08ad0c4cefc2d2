package bilibili

import "strings"

const emojiStyle = `margin: -1px 1px 0px; display: inline-block; width: 20px; height: 20px; vertical-align: text-bottom;`

// ExpandEmoji replaces every occurrence of each catalog token in text with an
// inline image reference. Tokens are matched as literal substrings; many of
// them contain characters like "[" that are significant in a regexp, so no
// pattern engine is involved.
func ExpandEmoji(text string, catalog []EmojiDetail) string {
	for _, e := range catalog {
		if e.Text == "" || e.URL == "" {
			continue
		}
		tag := `<img alt="` + e.Text + `" src="` + e.URL + `" style="` + emojiStyle + `" title="" referrerpolicy="no-referrer">`
		text = strings.ReplaceAll(text, e.Text, tag)
	}
	return text
}
