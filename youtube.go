package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const channelUploadsCount = 20

// YoutubeHelper wraps the v3 API. The raw caller covers what the typed
// surface cannot: the activities home parameter, the rate response body
// (likeCount) and the passthrough forwarder.
type YoutubeHelper struct {
	service     *youtube.Service
	authService *youtube.Service
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
}

func NewYoutubeHelper(cfg *Config) (*YoutubeHelper, error) {
	ctx := context.Background()

	service, err := youtube.NewService(ctx,
		option.WithAPIKey(cfg.APIKey),
		option.WithEndpoint(cfg.YoutubeBaseURL+"/"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create youtube service")
	}

	h := &YoutubeHelper{
		service:    service,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.YoutubeBaseURL, "/"),
		httpClient: &http.Client{},
		timeout:    cfg.UpstreamTimeout(),
	}

	if cfg.BearerToken != "" {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken})
		client := oauth2.NewClient(ctx, source)
		authService, err := youtube.NewService(ctx,
			option.WithHTTPClient(client),
			option.WithEndpoint(cfg.YoutubeBaseURL+"/"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create authenticated youtube service")
		}
		h.authService = authService
	}

	return h, nil
}

func (h *YoutubeHelper) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.timeout)
}

func (h *YoutubeHelper) Channel(ctx context.Context, id string) ([]Item, error) {
	ctx, cancel := h.callCtx(ctx)
	defer cancel()
	resp, err := h.service.Channels.List([]string{"snippet", "contentDetails", "statistics"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, v3Failure(err)
	}
	items := make([]Item, 0, len(resp.Items))
	for _, ch := range resp.Items {
		items = append(items, itemFromChannel(ch))
	}
	return items, nil
}

func (h *YoutubeHelper) ChannelByUsername(ctx context.Context, username string) ([]Item, error) {
	ctx, cancel := h.callCtx(ctx)
	defer cancel()
	resp, err := h.service.Channels.List([]string{"snippet", "statistics"}).ForUsername(username).Context(ctx).Do()
	if err != nil {
		return nil, v3Failure(err)
	}
	items := make([]Item, 0, len(resp.Items))
	for _, ch := range resp.Items {
		items = append(items, itemFromChannel(ch))
	}
	return items, nil
}

func (h *YoutubeHelper) ChannelUploads(ctx context.Context, channelID string) ([]Item, error) {
	ctx, cancel := h.callCtx(ctx)
	defer cancel()
	resp, err := h.service.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		MaxResults(channelUploadsCount).
		Order("date").
		Context(ctx).Do()
	if err != nil {
		return nil, v3Failure(err)
	}
	items := make([]Item, 0, len(resp.Items))
	for _, sr := range resp.Items {
		items = append(items, itemFromSearchResult(sr))
	}
	return items, nil
}

// SearchVideos runs a video search with already-mapped v3 parameters.
func (h *YoutubeHelper) SearchVideos(ctx context.Context, mapped map[string]any) ([]Item, error) {
	ctx, cancel := h.callCtx(ctx)
	defer cancel()
	call := h.service.Search.List([]string{"snippet"}).Type("video")
	for key, value := range mapped {
		switch key {
		case "q":
			call = call.Q(value.(string))
		case "maxResults":
			if n, err := strconv.ParseInt(value.(string), 10, 64); err == nil && n > 0 {
				call = call.MaxResults(n)
			}
		case "pageToken":
			call = call.PageToken(value.(string))
		case "order":
			call = call.Order(value.(string))
		case "publishedAfter":
			call = call.PublishedAfter(value.(string))
		case "videoDuration":
			call = call.VideoDuration(value.(string))
		case "videoSyndicated":
			if b, ok := value.(bool); ok && b {
				call = call.VideoSyndicated("true")
			}
		case "videoType":
			call = call.VideoType(value.(string))
		case "type":
			// already constrained to video
		}
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, v3Failure(err)
	}
	items := make([]Item, 0, len(resp.Items))
	for _, sr := range resp.Items {
		items = append(items, itemFromSearchResult(sr))
	}
	return items, nil
}

func (h *YoutubeHelper) Playlists(ctx context.Context, channelID string) ([]Item, error) {
	ctx, cancel := h.callCtx(ctx)
	defer cancel()
	resp, err := h.service.Playlists.List([]string{"snippet"}).ChannelId(channelID).Context(ctx).Do()
	if err != nil {
		return nil, v3Failure(err)
	}
	items := make([]Item, 0, len(resp.Items))
	for _, pl := range resp.Items {
		items = append(items, itemFromPlaylist(pl))
	}
	return items, nil
}

func (h *YoutubeHelper) CommentThreads(ctx context.Context, videoID string) ([]Item, error) {
	ctx, cancel := h.callCtx(ctx)
	defer cancel()
	resp, err := h.service.CommentThreads.List([]string{"snippet"}).VideoId(videoID).Context(ctx).Do()
	if err != nil {
		return nil, v3Failure(err)
	}
	items := make([]Item, 0, len(resp.Items))
	for _, ct := range resp.Items {
		items = append(items, itemFromCommentThread(ct))
	}
	return items, nil
}

func (h *YoutubeHelper) Subscribe(ctx context.Context, channelID string) (string, error) {
	if h.authService == nil {
		return "", &ConfigError{Missing: "bearer_token"}
	}
	ctx, cancel := h.callCtx(ctx)
	defer cancel()
	sub := &youtube.Subscription{
		Snippet: &youtube.SubscriptionSnippet{
			ResourceId: &youtube.ResourceId{
				Kind:      "youtube#channel",
				ChannelId: channelID,
			},
		},
	}
	created, err := h.authService.Subscriptions.Insert([]string{"snippet"}, sub).Context(ctx).Do()
	if err != nil {
		return "", v3Failure(err)
	}
	return created.Id, nil
}

// Rate reads likeCount off the rate response body.
func (h *YoutubeHelper) Rate(ctx context.Context, videoID, rating string) (string, error) {
	q := url.Values{"id": {videoID}, "rating": {rating}}
	var out struct {
		LikeCount string `json:"likeCount"`
	}
	if err := h.doRaw(ctx, http.MethodPost, "videos/rate", q, &out); err != nil {
		return "", err
	}
	return out.LikeCount, nil
}

type listResponse struct {
	Items    []Item `json:"items"`
	PageInfo struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
}

// Activities stays raw; the home parameter is gone from the typed
// surface.
func (h *YoutubeHelper) Activities(ctx context.Context, maxResults string) ([]Item, int, error) {
	if maxResults == "" {
		maxResults = "10"
	}
	q := url.Values{
		"part":       {"snippet,contentDetails"},
		"home":       {"true"},
		"maxResults": {maxResults},
	}
	var out listResponse
	if err := h.doRaw(ctx, http.MethodGet, "activities", q, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.PageInfo.TotalResults, nil
}

// Forward relays an unrecognized request verbatim, appending the key.
func (h *YoutubeHelper) Forward(ctx context.Context, method, resource string, query url.Values) ([]Item, int, error) {
	var out listResponse
	if err := h.doRaw(ctx, method, resource, query, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.PageInfo.TotalResults, nil
}

func (h *YoutubeHelper) doRaw(ctx context.Context, method, resource string, query url.Values, out any) error {
	ctx, cancel := h.callCtx(ctx)
	defer cancel()

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", h.apiKey)
	u := h.baseURL + "/youtube/v3/" + strings.Trim(resource, "/") + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build upstream request")
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return upstreamFailure("youtube", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return upstreamFailure("youtube", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Service: "youtube", Status: resp.StatusCode, Err: errors.New(string(body))}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Service: "youtube", Err: errors.Wrap(err, "failed to decode upstream body")}
	}
	return nil
}
