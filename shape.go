package main

import (
	"encoding/json"
	"strconv"

	"github.com/sosodev/duration"
	"google.golang.org/api/youtube/v3"

	"github.com/glebkin/gdataproxy/entity"
)

// Item is the neutral view of one upstream record. Nothing beyond id
// and snippet.title is assumed to be present.
type Item struct {
	ID             ItemID       `json:"id"`
	Snippet        ItemSnippet  `json:"snippet"`
	Statistics     *ItemStats   `json:"statistics,omitempty"`
	ContentDetails *ItemDetails `json:"contentDetails,omitempty"`
}

// ItemID accepts both id shapes the v3 API produces: a plain string
// and the search-result object carrying one of videoId, channelId or
// playlistId.
type ItemID struct {
	Value string
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id.Value = s
		return nil
	}
	var obj struct {
		VideoID    string `json:"videoId"`
		ChannelID  string `json:"channelId"`
		PlaylistID string `json:"playlistId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.VideoID != "":
		id.Value = obj.VideoID
	case obj.ChannelID != "":
		id.Value = obj.ChannelID
	case obj.PlaylistID != "":
		id.Value = obj.PlaylistID
	}
	return nil
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Value)
}

type ItemSnippet struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	PublishedAt string         `json:"publishedAt"`
	Thumbnails  ItemThumbnails `json:"thumbnails"`
}

type ItemThumbnails struct {
	Default *ItemThumbnail `json:"default,omitempty"`
	High    *ItemThumbnail `json:"high,omitempty"`
}

type ItemThumbnail struct {
	URL string `json:"url"`
}

type ItemStats struct {
	ViewCount       string `json:"viewCount,omitempty"`
	SubscriberCount string `json:"subscriberCount,omitempty"`
}

type ItemDetails struct {
	Duration string     `json:"duration,omitempty"`
	Upload   *UploadRef `json:"upload,omitempty"`
}

type UploadRef struct {
	VideoID string `json:"videoId"`
}

// Activities carry the video id in the upload reference, not in the
// top-level id.
func (it Item) entryID() string {
	if it.ContentDetails != nil && it.ContentDetails.Upload != nil && it.ContentDetails.Upload.VideoID != "" {
		return it.ContentDetails.Upload.VideoID
	}
	return it.ID.Value
}

func (it Item) thumbnailURL() string {
	if it.Snippet.Thumbnails.Default != nil {
		return it.Snippet.Thumbnails.Default.URL
	}
	if it.Snippet.Thumbnails.High != nil {
		return it.Snippet.Thumbnails.High.URL
	}
	return ""
}

// Lightweight upstream requests omit statistics entirely.
func (it Item) viewCount() int64 {
	if it.Statistics == nil {
		return 0
	}
	n, err := strconv.ParseInt(it.Statistics.ViewCount, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (it Item) subscriberCount() string {
	if it.Statistics == nil {
		return ""
	}
	return it.Statistics.SubscriberCount
}

func (it Item) durationSeconds() int64 {
	if it.ContentDetails == nil || it.ContentDetails.Duration == "" {
		return 0
	}
	d, err := duration.Parse(it.ContentDetails.Duration)
	if err != nil {
		return 0
	}
	return int64(d.ToTimeDuration().Seconds())
}

type LegacyEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Published   string `json:"published,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
	ViewCount   int64  `json:"viewCount"`
	Duration    int64  `json:"duration,omitempty"`
}

func toLegacyEntries(items []Item) []LegacyEntry {
	entries := make([]LegacyEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, LegacyEntry{
			ID:          it.entryID(),
			Title:       it.Snippet.Title,
			Published:   it.Snippet.PublishedAt,
			Thumbnail:   it.thumbnailURL(),
			Description: it.Snippet.Description,
			ViewCount:   it.viewCount(),
			Duration:    it.durationSeconds(),
		})
	}
	return entries
}

// ChannelEntry is the single merged object legacy channel pages
// consume.
type ChannelEntry struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Avatar          string        `json:"avatar,omitempty"`
	SubscriberCount string        `json:"subscriberCount,omitempty"`
	ViewCount       int64         `json:"viewCount"`
	Videos          []LegacyEntry `json:"videos"`
}

func mergeChannel(channels, uploads []Item) (map[string]any, error) {
	if len(channels) == 0 {
		return nil, &ShapingError{Reason: "channel not found", NotFound: true}
	}
	ch := channels[0]
	return map[string]any{
		"entry": ChannelEntry{
			ID:              ch.ID.Value,
			Title:           ch.Snippet.Title,
			Description:     ch.Snippet.Description,
			Avatar:          ch.thumbnailURL(),
			SubscriberCount: ch.subscriberCount(),
			ViewCount:       ch.viewCount(),
			Videos:          toLegacyEntries(uploads),
		},
	}, nil
}

// LegacyFeed mirrors the legacy pagination envelope.
type LegacyFeed struct {
	Xmlns        string        `json:"xmlns"`
	TotalResults int           `json:"totalResults"`
	StartIndex   int           `json:"startIndex"`
	Entry        []LegacyEntry `json:"entry"`
}

// wrapFeed reports the upstream total when one was decoded; typed list
// calls pass zero and fall back to the page length.
func wrapFeed(items []Item, startIndex, total int) map[string]any {
	if startIndex < 1 {
		startIndex = 1
	}
	if total < len(items) {
		total = len(items)
	}
	return map[string]any{
		"feed": LegacyFeed{
			Xmlns:        entity.NSAtom,
			TotalResults: total,
			StartIndex:   startIndex,
			Entry:        toLegacyEntries(items),
		},
	}
}

func itemFromChannel(ch *youtube.Channel) Item {
	it := Item{ID: ItemID{Value: ch.Id}}
	if ch.Snippet != nil {
		it.Snippet = ItemSnippet{
			Title:       ch.Snippet.Title,
			Description: ch.Snippet.Description,
			PublishedAt: ch.Snippet.PublishedAt,
			Thumbnails:  thumbnailsFromDetails(ch.Snippet.Thumbnails),
		}
	}
	if ch.Statistics != nil {
		it.Statistics = &ItemStats{
			ViewCount:       strconv.FormatUint(ch.Statistics.ViewCount, 10),
			SubscriberCount: strconv.FormatUint(ch.Statistics.SubscriberCount, 10),
		}
	}
	return it
}

func itemFromSearchResult(sr *youtube.SearchResult) Item {
	it := Item{}
	if sr.Id != nil {
		switch {
		case sr.Id.VideoId != "":
			it.ID.Value = sr.Id.VideoId
		case sr.Id.ChannelId != "":
			it.ID.Value = sr.Id.ChannelId
		case sr.Id.PlaylistId != "":
			it.ID.Value = sr.Id.PlaylistId
		}
	}
	if sr.Snippet != nil {
		it.Snippet = ItemSnippet{
			Title:       sr.Snippet.Title,
			Description: sr.Snippet.Description,
			PublishedAt: sr.Snippet.PublishedAt,
			Thumbnails:  thumbnailsFromDetails(sr.Snippet.Thumbnails),
		}
	}
	return it
}

func itemFromPlaylist(pl *youtube.Playlist) Item {
	it := Item{ID: ItemID{Value: pl.Id}}
	if pl.Snippet != nil {
		it.Snippet = ItemSnippet{
			Title:       pl.Snippet.Title,
			Description: pl.Snippet.Description,
			PublishedAt: pl.Snippet.PublishedAt,
			Thumbnails:  thumbnailsFromDetails(pl.Snippet.Thumbnails),
		}
	}
	return it
}

func itemFromCommentThread(ct *youtube.CommentThread) Item {
	it := Item{ID: ItemID{Value: ct.Id}}
	if ct.Snippet != nil && ct.Snippet.TopLevelComment != nil && ct.Snippet.TopLevelComment.Snippet != nil {
		cs := ct.Snippet.TopLevelComment.Snippet
		it.Snippet = ItemSnippet{
			Title:       cs.TextDisplay,
			Description: cs.TextOriginal,
			PublishedAt: cs.PublishedAt,
		}
	}
	return it
}

func thumbnailsFromDetails(td *youtube.ThumbnailDetails) ItemThumbnails {
	out := ItemThumbnails{}
	if td == nil {
		return out
	}
	if td.Default != nil {
		out.Default = &ItemThumbnail{URL: td.Default.Url}
	}
	if td.High != nil {
		out.High = &ItemThumbnail{URL: td.High.Url}
	}
	return out
}
