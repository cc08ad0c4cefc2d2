package rss

import (
	"encoding/xml"

	"bilifeed/internal/model"
)

type document struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Items       []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link,omitempty"`
	GUID        string `xml:"guid,omitempty"`
	Description cdata  `xml:"description"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

// Render serializes a normalized feed as an RSS 2.0 document. Descriptions
// are HTML and go out as CDATA.
func Render(f model.Feed) (string, error) {
	doc := document{
		Version: "2.0",
		Channel: channel{
			Title:       f.Title,
			Link:        f.Link,
			Description: f.Description,
			Items:       make([]item, 0, len(f.Items)),
		},
	}
	for _, it := range f.Items {
		doc.Channel.Items = append(doc.Channel.Items, item{
			Title:       it.Title,
			Link:        it.Link,
			GUID:        it.Link,
			Description: cdata{Text: it.Description},
			Author:      it.Author,
			PubDate:     it.PubDate,
		})
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(out) + "\n", nil
}
