package main

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/glebkin/gdataproxy/entity"
)

type parsedFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Attrs   []xml.Attr   `xml:",any,attr"`
	Entries []parsedEntry `xml:"entry"`
}

type parsedEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
	Media     *struct {
		Thumbnail struct {
			URL string `xml:"url,attr"`
		} `xml:"thumbnail"`
		Description string `xml:"description"`
	} `xml:"group"`
	Stats *struct {
		ViewCount       string `xml:"viewCount,attr"`
		SubscriberCount string `xml:"subscriberCount,attr"`
	} `xml:"statistics"`
}

func testItems() []Item {
	return []Item{
		{
			ID: ItemID{Value: "v1"},
			Snippet: ItemSnippet{
				Title:       "First",
				Description: "first video",
				PublishedAt: "2024-01-01T00:00:00Z",
				Thumbnails:  ItemThumbnails{Default: &ItemThumbnail{URL: "https://i.ytimg.com/vi/v1/default.jpg"}},
			},
			Statistics: &ItemStats{ViewCount: "100", SubscriberCount: "7"},
		},
		{
			ID: ItemID{Value: "v2"},
			Snippet: ItemSnippet{
				Title:       "Second",
				PublishedAt: "2024-01-02T00:00:00Z",
			},
		},
	}
}

func renderKind(t *testing.T, kind string) *parsedFeed {
	t.Helper()
	feed := buildAtomFeed(testItems(), kind, fixedNow)
	data, err := renderAtom(feed)
	if err != nil {
		t.Fatal(err)
	}
	parsed := &parsedFeed{}
	if err := xml.Unmarshal(data, parsed); err != nil {
		t.Fatalf("generated %s feed is not well-formed: %v\n%s", kind, err, data)
	}
	return parsed
}

func Test_buildAtomFeed_namespaces(t *testing.T) {
	for _, kind := range []string{"video", "user", "channel", "playlist", "comment", "default"} {
		t.Run(kind, func(t *testing.T) {
			parsed := renderKind(t, kind)
			if len(parsed.Attrs) != 3 {
				t.Fatalf("expected exactly 3 namespace attributes, got %d: %v", len(parsed.Attrs), parsed.Attrs)
			}
			values := map[string]bool{}
			for _, attr := range parsed.Attrs {
				values[attr.Value] = true
			}
			for _, ns := range []string{entity.NSAtom, entity.NSMedia, entity.NSYt} {
				if !values[ns] {
					t.Errorf("namespace %s not declared", ns)
				}
			}
		})
	}
}

func Test_buildAtomFeed_entries(t *testing.T) {
	parsed := renderKind(t, "video")
	if len(parsed.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(parsed.Entries))
	}
	if parsed.Entries[0].ID != "v1" || parsed.Entries[1].ID != "v2" {
		t.Errorf("entry order not preserved: %+v", parsed.Entries)
	}
	for _, e := range parsed.Entries {
		if e.ID == "" || e.Title == "" {
			t.Errorf("entry missing required elements: %+v", e)
		}
	}
}

func Test_buildAtomFeed_videoKind(t *testing.T) {
	parsed := renderKind(t, "video")
	first := parsed.Entries[0]
	if first.Media == nil {
		t.Fatal("video entry missing media group")
	}
	if first.Media.Thumbnail.URL != "https://i.ytimg.com/vi/v1/default.jpg" {
		t.Errorf("unexpected thumbnail %q", first.Media.Thumbnail.URL)
	}
	if first.Media.Description != "first video" {
		t.Errorf("unexpected description %q", first.Media.Description)
	}
	if first.Stats != nil {
		t.Error("video entry should not carry statistics")
	}
}

func Test_buildAtomFeed_userKind(t *testing.T) {
	for _, kind := range []string{"user", "channel"} {
		t.Run(kind, func(t *testing.T) {
			parsed := renderKind(t, kind)
			first := parsed.Entries[0]
			if first.Stats == nil {
				t.Fatalf("%s entry missing statistics", kind)
			}
			if first.Stats.ViewCount != "100" {
				t.Errorf("viewCount = %q, want 100", first.Stats.ViewCount)
			}
			if first.Stats.SubscriberCount != "7" {
				t.Errorf("subscriberCount = %q, want 7", first.Stats.SubscriberCount)
			}
			if first.Media != nil {
				t.Errorf("%s entry should not carry a media group", kind)
			}
		})
	}
}

func Test_renderAtom_declaration(t *testing.T) {
	data, err := renderAtom(buildAtomFeed(testItems(), "video", fixedNow))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, xml.Header) {
		t.Error("output missing XML declaration")
	}
	if !strings.Contains(text, "\n  <entry>") {
		t.Error("output not indented")
	}
}
