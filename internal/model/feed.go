package model

// Item is one normalized feed entry. Description is HTML; PubDate is an
// RFC1123 GMT timestamp string. Author and Link may be empty.
type Item struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	Link        string `json:"link"`
}

// Feed is the produced contract for the serialization layer: an ordered
// list of items plus feed-level metadata derived from the display name.
type Feed struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}
