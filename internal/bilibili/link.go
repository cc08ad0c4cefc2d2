package bilibili

// bvidEpoch is the publish time at which the bvid identifier scheme became
// reliable. Videos uploaded earlier may carry a bvid that does not resolve,
// so their links keep the numeric av path.
const bvidEpoch = 1589990400

const (
	timelineBaseURL = "https://t.bilibili.com"
	videoBaseURL    = "https://www.bilibili.com/video"
)

// DynamicLink builds the activity-timeline permalink for a general dynamic:
// the card-level dynamic id if present, else the envelope-level one, else "".
func DynamicLink(c Card, e Entry) string {
	if id := c.Str("dynamic_id"); id != "" && id != "0" {
		return timelineBaseURL + "/" + id
	}
	if id := e.Desc.DynamicID.String(); id != "" && id != "0" {
		return timelineBaseURL + "/" + id
	}
	return ""
}

// VideoLink builds the watch permalink for a video card, applying the bvid
// cutover rule.
func VideoLink(c Card) string {
	if bvid := c.Str("bvid"); bvid != "" && c.Int("pubdate") >= bvidEpoch {
		return videoBaseURL + "/" + bvid
	}
	return videoBaseURL + "/av" + c.Str("aid")
}
