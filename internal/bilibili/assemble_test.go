package bilibili

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeMetadata struct {
	names    map[string]string
	articles map[string]string
	delays   map[string]time.Duration
	err      error
}

func (f *fakeMetadata) Username(ctx context.Context, uid string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.names[uid], nil
}

func (f *fakeMetadata) Article(ctx context.Context, cvid, uid string) (string, error) {
	if d := f.delays[cvid]; d > 0 {
		time.Sleep(d)
	}
	if f.err != nil {
		return "", f.err
	}
	body, ok := f.articles[cvid]
	if !ok {
		return "", fmt.Errorf("no article cv%s", cvid)
	}
	return body, nil
}

func entry(card string, ts int64, uname string) Entry {
	var e Entry
	e.Card = card
	e.Desc.Timestamp = ts
	e.Desc.UserProfile.Info.UName = uname
	return e
}

func TestItemsRepostFixture(t *testing.T) {
	e := entry(`{"desc":"hello","origin":"{\"uname\":\"Alice\",\"title\":\"T\",\"desc\":\"original text\"}"}`, 1700000000, "Bob")
	asm := &Assembler{}
	items, skipped := asm.Items(context.Background(), "1", []Entry{e})
	if skipped != 0 || len(items) != 1 {
		t.Fatalf("items=%d skipped=%d", len(items), skipped)
	}
	want := "hello<br><br>Reposted from: @Alice: T<br>original text"
	if items[0].Description != want {
		t.Errorf("description = %q, want %q", items[0].Description, want)
	}
	if items[0].Author != "Bob" {
		t.Errorf("author = %q", items[0].Author)
	}
	if items[0].PubDate != time.Unix(1700000000, 0).UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT") {
		t.Errorf("pubDate = %q", items[0].PubDate)
	}
}

func TestItemsOrderPreservedUnderSlowExpansion(t *testing.T) {
	entries := []Entry{
		entry(`{"id":101,"title":"A1","summary":"s1","image_urls":["u1.jpg"]}`, 1, "u"),
		entry(`{"id":102,"title":"A2","summary":"s2","image_urls":["u2.jpg"]}`, 2, "u"),
		entry(`{"id":103,"title":"A3","summary":"s3","image_urls":["u3.jpg"]}`, 3, "u"),
	}
	md := &fakeMetadata{
		articles: map[string]string{"101": "body-1", "102": "body-2", "103": "body-3"},
		delays:   map[string]time.Duration{"102": 80 * time.Millisecond},
	}
	asm := &Assembler{Metadata: md, Options: Options{DisplayArticle: true}}
	items, skipped := asm.Items(context.Background(), "1", entries)
	if skipped != 0 || len(items) != 3 {
		t.Fatalf("items=%d skipped=%d", len(items), skipped)
	}
	for i, want := range []string{"A1", "A2", "A3"} {
		if items[i].Title != want {
			t.Errorf("items[%d].Title = %q, want %q", i, items[i].Title, want)
		}
		if !strings.HasPrefix(items[i].Description, fmt.Sprintf("body-%d", i+1)) {
			t.Errorf("items[%d].Description = %q, want body-%d prefix", i, items[i].Description, i+1)
		}
	}
}

func TestItemsSkipsBadEntry(t *testing.T) {
	entries := []Entry{
		entry(`{"title":"first"}`, 1, "u"),
		entry(`{broken`, 2, "u"),
		entry(`{"title":"third"}`, 3, "u"),
	}
	asm := &Assembler{}
	items, skipped := asm.Items(context.Background(), "1", entries)
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(items) != 2 || items[0].Title != "first" || items[1].Title != "third" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestItemsArticleFailureSkipsEntry(t *testing.T) {
	entries := []Entry{
		entry(`{"id":101,"title":"A1","summary":"s1","image_urls":["u1.jpg"]}`, 1, "u"),
		entry(`{"title":"plain","desc":"text"}`, 2, "u"),
	}
	md := &fakeMetadata{articles: map[string]string{}}
	asm := &Assembler{Metadata: md, Options: Options{DisplayArticle: true}}
	items, skipped := asm.Items(context.Background(), "1", entries)
	if skipped != 1 || len(items) != 1 {
		t.Fatalf("items=%d skipped=%d", len(items), skipped)
	}
	if items[0].Title != "plain" {
		t.Errorf("surviving item = %+v", items[0])
	}
}

func TestItemsIdempotent(t *testing.T) {
	entries := []Entry{
		entry(`{"desc":"hello","dynamic_id":9007199254740993111,"pictures":[{"img_src":"a.jpg"}]}`, 1700000000, "Bob"),
		entry(`{"title":"vid","desc":"d","aid":170001,"pic":"p.jpg"}`, 1700000100, "Eve"),
	}
	asm := &Assembler{}
	first, _ := asm.Items(context.Background(), "1", entries)
	second, _ := asm.Items(context.Background(), "1", entries)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestItemsEmojiOptIn(t *testing.T) {
	e := entry(`{"desc":"hi [doge]"}`, 1, "u")
	e.Display.EmojiInfo.EmojiDetails = []EmojiDetail{{Text: "[doge]", URL: "https://i0.hdslb.com/doge.png"}}

	asm := &Assembler{}
	items, _ := asm.Items(context.Background(), "1", []Entry{e})
	if items[0].Description != "hi [doge]" {
		t.Errorf("emoji expanded without opt-in: %q", items[0].Description)
	}

	asm = &Assembler{Options: Options{ShowEmoji: true}}
	items, _ = asm.Items(context.Background(), "1", []Entry{e})
	if !strings.Contains(items[0].Description, `alt="[doge]"`) {
		t.Errorf("emoji not expanded: %q", items[0].Description)
	}
}

func TestItemsBigDynamicIDLink(t *testing.T) {
	e := entry(`{"desc":"x","dynamic_id":9007199254740993111}`, 1, "u")
	asm := &Assembler{}
	items, _ := asm.Items(context.Background(), "1", []Entry{e})
	if items[0].Link != "https://t.bilibili.com/9007199254740993111" {
		t.Errorf("link = %q", items[0].Link)
	}
}

func TestItemsNewDescWins(t *testing.T) {
	e := entry(`{"new_desc":"rewritten","desc":"old"}`, 1, "u")
	asm := &Assembler{}
	items, _ := asm.Items(context.Background(), "1", []Entry{e})
	if !strings.HasPrefix(items[0].Description, "rewritten") {
		t.Errorf("description = %q", items[0].Description)
	}
}

func TestItemsBlockOrder(t *testing.T) {
	card := `{"desc":"text","aid":100,` +
		`"pictures":[{"img_src":"a.jpg"}],` +
		`"video_playurl":"http://v.example.com/x.mp4","width":1,"height":2,` +
		`"origin":"{\"uname\":\"Ann\",\"desc\":\"od\",\"aid\":200,\"pic\":\"o.jpg\"}"}`
	e := entry(card, 1, "u")
	asm := &Assembler{}
	items, _ := asm.Items(context.Background(), "1", []Entry{e})
	d := items[0].Description

	idx := func(sub string) int {
		i := strings.Index(d, sub)
		if i == -1 {
			t.Fatalf("description missing %q: %q", sub, d)
		}
		return i
	}
	text := idx("text")
	repost := idx("Reposted from: @Ann")
	primaryEmbed := idx("aid=100")
	originEmbed := idx("aid=200")
	imgs := idx(`<img src="a.jpg">`)
	originImg := idx(`<img src="o.jpg">`)
	video := idx("<video ")
	if !(text < repost && repost < primaryEmbed && primaryEmbed < originEmbed && originEmbed < imgs && imgs < originImg && originImg < video) {
		t.Errorf("blocks out of order: %q", d)
	}
}

func TestItemsDisableEmbed(t *testing.T) {
	e := entry(`{"desc":"text","aid":100,"video_playurl":"http://v.example.com/x.mp4","width":1,"height":2}`, 1, "u")
	asm := &Assembler{Options: Options{DisableEmbed: true}}
	items, _ := asm.Items(context.Background(), "1", []Entry{e})
	if strings.Contains(items[0].Description, "iframe") {
		t.Errorf("iframe not suppressed: %q", items[0].Description)
	}
	if strings.Contains(items[0].Description, "<video") {
		t.Errorf("video element not suppressed: %q", items[0].Description)
	}
	if items[0].Description != "text" {
		t.Errorf("description = %q, want bare text", items[0].Description)
	}
}

func TestVideoItems(t *testing.T) {
	e := entry(`{"title":"V","desc":"d","pic":"p.jpg","aid":170001,"bvid":"BV1xx411c7mD","pubdate":1600000000}`, 0, "Carol")
	asm := &Assembler{}
	items, skipped := asm.VideoItems("1", []Entry{e})
	if skipped != 0 || len(items) != 1 {
		t.Fatalf("items=%d skipped=%d", len(items), skipped)
	}
	it := items[0]
	if it.Title != "V" || it.Author != "Carol" {
		t.Errorf("item = %+v", it)
	}
	if it.Link != "https://www.bilibili.com/video/BV1xx411c7mD" {
		t.Errorf("link = %q", it.Link)
	}
	if !strings.HasPrefix(it.Description, "d<br><br><iframe ") || !strings.HasSuffix(it.Description, `<br><img src="p.jpg">`) {
		t.Errorf("description = %q", it.Description)
	}
	if it.PubDate != time.Unix(1600000000, 0).UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT") {
		t.Errorf("pubDate = %q", it.PubDate)
	}
}

func TestVideoItemsDisableEmbed(t *testing.T) {
	e := entry(`{"title":"V","desc":"d","pic":"p.jpg","aid":170001,"pubdate":1500000000}`, 0, "Carol")
	asm := &Assembler{Options: Options{DisableEmbed: true}}
	items, _ := asm.VideoItems("1", []Entry{e})
	if items[0].Description != `d<br><img src="p.jpg">` {
		t.Errorf("description = %q", items[0].Description)
	}
	if items[0].Link != "https://www.bilibili.com/video/av170001" {
		t.Errorf("link = %q", items[0].Link)
	}
}
