package main

import (
	"encoding/xml"
	"time"

	"github.com/glebkin/gdataproxy/entity"
)

// buildAtomFeed assembles the legacy feed document. Kind video adds
// the media group; user and channel add the statistics block.
func buildAtomFeed(items []Item, kind string, now time.Time) *entity.Feed {
	feed := &entity.Feed{
		Xmlns:      entity.NSAtom,
		XmlnsMedia: entity.NSMedia,
		XmlnsYt:    entity.NSYt,
		Updated:    now.UTC().Format(time.RFC3339),
	}
	for _, it := range items {
		e := entity.Entry{
			ID:        it.entryID(),
			Title:     it.Snippet.Title,
			Published: it.Snippet.PublishedAt,
		}
		switch kind {
		case "video":
			media := &entity.MediaGroup{Description: it.Snippet.Description}
			if u := it.thumbnailURL(); u != "" {
				media.Thumbnail = &entity.MediaThumbnail{URL: u}
			}
			e.Media = media
		case "user", "channel":
			e.Statistics = &entity.Statistics{
				ViewCount:       it.viewCount(),
				SubscriberCount: it.subscriberCount(),
			}
		}
		feed.Entry = append(feed.Entry, e)
	}
	return feed
}

// Clients parse by XPath, so element nesting matters but byte-exact
// output does not.
func renderAtom(feed *entity.Feed) ([]byte, error) {
	body, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
