package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/friendsofgo/errors"
)

const (
	innerTubeClientName    = "WEB"
	innerTubeClientVersion = "2.20240101.00.00"
	innerTubeUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// InnerTubeHelper talks to the internal JSON endpoint. The endpoint
// rejects requests without a browser User-Agent.
type InnerTubeHelper struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewInnerTubeHelper(cfg *Config) *InnerTubeHelper {
	return &InnerTubeHelper{
		baseURL: cfg.InnerTubeBaseURL,
		client:  &http.Client{},
		timeout: cfg.UpstreamTimeout(),
	}
}

type InnerTubeVideo struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Duration    string `json:"duration,omitempty"`
}

type innerTubeContext struct {
	Client struct {
		ClientName    string `json:"clientName"`
		ClientVersion string `json:"clientVersion"`
		HL            string `json:"hl"`
		GL            string `json:"gl"`
	} `json:"client"`
}

func newInnerTubeContext() innerTubeContext {
	var c innerTubeContext
	c.Client.ClientName = innerTubeClientName
	c.Client.ClientVersion = innerTubeClientVersion
	c.Client.HL = "en"
	c.Client.GL = "US"
	return c
}

type runsText struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
	SimpleText string `json:"simpleText"`
}

func (r runsText) text() string {
	if len(r.Runs) > 0 {
		return r.Runs[0].Text
	}
	return r.SimpleText
}

type thumbnailList struct {
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

func (t thumbnailList) first() string {
	if len(t.Thumbnails) > 0 {
		return t.Thumbnails[0].URL
	}
	return ""
}

type videoRenderer struct {
	VideoID            string        `json:"videoId"`
	Title              runsText      `json:"title"`
	DescriptionSnippet *runsText     `json:"descriptionSnippet"`
	Thumbnail          thumbnailList `json:"thumbnail"`
}

func (v videoRenderer) simplified() InnerTubeVideo {
	out := InnerTubeVideo{
		VideoID:   v.VideoID,
		Title:     v.Title.text(),
		Thumbnail: v.Thumbnail.first(),
	}
	if v.DescriptionSnippet != nil {
		out.Description = v.DescriptionSnippet.text()
	}
	return out
}

func (h *InnerTubeHelper) Search(ctx context.Context, query string, maxResults int64) ([]InnerTubeVideo, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	body := struct {
		Context innerTubeContext `json:"context"`
		Query   string           `json:"query"`
	}{Context: newInnerTubeContext(), Query: query}

	var decoded struct {
		Contents struct {
			TwoColumnSearchResultsRenderer struct {
				PrimaryContents struct {
					SectionListRenderer struct {
						Contents []struct {
							ItemSectionRenderer struct {
								Contents []struct {
									VideoRenderer *videoRenderer `json:"videoRenderer"`
								} `json:"contents"`
							} `json:"itemSectionRenderer"`
						} `json:"contents"`
					} `json:"sectionListRenderer"`
				} `json:"primaryContents"`
			} `json:"twoColumnSearchResultsRenderer"`
		} `json:"contents"`
	}
	if err := h.call(ctx, "search", body, &decoded); err != nil {
		return nil, err
	}

	results := []InnerTubeVideo{}
	for _, section := range decoded.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		for _, item := range section.ItemSectionRenderer.Contents {
			if item.VideoRenderer == nil || item.VideoRenderer.VideoID == "" {
				continue
			}
			results = append(results, item.VideoRenderer.simplified())
			if int64(len(results)) >= maxResults {
				return results, nil
			}
		}
	}
	return results, nil
}

func (h *InnerTubeHelper) Player(ctx context.Context, videoID string) (*InnerTubeVideo, error) {
	body := struct {
		Context innerTubeContext `json:"context"`
		VideoID string           `json:"videoId"`
	}{Context: newInnerTubeContext(), VideoID: videoID}

	var decoded struct {
		VideoDetails struct {
			VideoID          string        `json:"videoId"`
			Title            string        `json:"title"`
			ShortDescription string        `json:"shortDescription"`
			LengthSeconds    string        `json:"lengthSeconds"`
			Thumbnail        thumbnailList `json:"thumbnail"`
		} `json:"videoDetails"`
	}
	if err := h.call(ctx, "player", body, &decoded); err != nil {
		return nil, err
	}
	if decoded.VideoDetails.VideoID == "" {
		return nil, &ShapingError{Reason: "video not found", NotFound: true}
	}

	return &InnerTubeVideo{
		VideoID:     decoded.VideoDetails.VideoID,
		Title:       decoded.VideoDetails.Title,
		Description: decoded.VideoDetails.ShortDescription,
		Thumbnail:   decoded.VideoDetails.Thumbnail.first(),
		Duration:    decoded.VideoDetails.LengthSeconds,
	}, nil
}

func (h *InnerTubeHelper) Playlist(ctx context.Context, playlistID string, maxResults int64) ([]InnerTubeVideo, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	body := struct {
		Context    innerTubeContext `json:"context"`
		PlaylistID string           `json:"playlistId"`
	}{Context: newInnerTubeContext(), PlaylistID: playlistID}

	var decoded struct {
		Contents struct {
			TwoColumnBrowseResultsRenderer struct {
				Tabs []struct {
					TabRenderer struct {
						Content struct {
							SectionListRenderer struct {
								Contents []struct {
									ItemSectionRenderer struct {
										Contents []struct {
											PlaylistVideoListRenderer struct {
												Contents []struct {
													PlaylistVideoRenderer *videoRenderer `json:"playlistVideoRenderer"`
												} `json:"contents"`
											} `json:"playlistVideoListRenderer"`
										} `json:"contents"`
									} `json:"itemSectionRenderer"`
								} `json:"contents"`
							} `json:"sectionListRenderer"`
						} `json:"content"`
					} `json:"tabRenderer"`
				} `json:"tabs"`
			} `json:"twoColumnBrowseResultsRenderer"`
		} `json:"contents"`
	}
	if err := h.call(ctx, "playlist", body, &decoded); err != nil {
		return nil, err
	}

	results := []InnerTubeVideo{}
	for _, tab := range decoded.Contents.TwoColumnBrowseResultsRenderer.Tabs {
		for _, section := range tab.TabRenderer.Content.SectionListRenderer.Contents {
			for _, item := range section.ItemSectionRenderer.Contents {
				for _, entry := range item.PlaylistVideoListRenderer.Contents {
					if entry.PlaylistVideoRenderer == nil || entry.PlaylistVideoRenderer.VideoID == "" {
						continue
					}
					results = append(results, entry.PlaylistVideoRenderer.simplified())
					if int64(len(results)) >= maxResults {
						return results, nil
					}
				}
			}
		}
	}
	return results, nil
}

func (h *InnerTubeHelper) call(ctx context.Context, endpoint string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", innerTubeUserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return upstreamFailure("innertube", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &UpstreamError{Service: "innertube", Status: resp.StatusCode, Err: errors.New(string(bodyBytes))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Service: "innertube", Err: errors.Wrap(err, "failed to decode response")}
	}
	return nil
}
