package main

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"golang.org/x/sync/errgroup"
)

// result is what an operation hands back to the boundary: either a
// pre-shaped object or an item list plus the kind that drives feed
// shaping.
type result struct {
	object     any
	items      []Item
	kind       string
	startIndex int
	total      int
}

type operation func(r *http.Request) (*result, error)

type route struct {
	pattern string
	op      operation
}

type Proxy struct {
	config *Config
	yt     *YoutubeHelper
	it     *InnerTubeHelper
	dl     *DislikeHelper
	now    func() time.Time

	routes []route
}

func NewProxy(cfg *Config, yt *YoutubeHelper, it *InnerTubeHelper, dl *DislikeHelper) *Proxy {
	p := &Proxy{
		config: cfg,
		yt:     yt,
		it:     it,
		dl:     dl,
		now:    time.Now,
	}
	// Substring containment in priority order, first match wins:
	// /videos/rate must be checked before /videos.
	p.routes = []route{
		{"/videos/rate", p.rateVideo},
		{"/channels", p.channelData},
		{"/activities", p.recommendations},
		{"/subscriptions", p.subscribe},
		{"/users", p.userProfile},
		{"/playlists", p.playlists},
		{"/comments", p.comments},
		{"/videos", p.videos},
	}
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, p.config.BasePath)

	op := operation(p.passthrough)
	for _, rt := range p.routes {
		if strings.Contains(path, rt.pattern) {
			op = rt.op
			break
		}
	}

	res, err := op(r)
	if err != nil {
		p.writeError(w, r, err)
		return
	}
	p.writeResult(w, res)
}

func (p *Proxy) channelData(r *http.Request) (*result, error) {
	query := r.URL.Query()
	id := query.Get("id")
	if id == "" {
		id = query.Get("channelId")
	}

	g, ctx := errgroup.WithContext(r.Context())
	var channels, uploads []Item
	g.Go(func() error {
		var err error
		channels, err = p.yt.Channel(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		uploads, err = p.yt.ChannelUploads(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := mergeChannel(channels, uploads)
	if err != nil {
		return nil, err
	}
	return &result{object: merged}, nil
}

func (p *Proxy) rateVideo(r *http.Request) (*result, error) {
	var body struct {
		VideoID string `json:"videoId"`
		Rating  string `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode rate body")
	}

	g, ctx := errgroup.WithContext(r.Context())
	var likes string
	var votes *VoteResult
	g.Go(func() error {
		var err error
		likes, err = p.yt.Rate(ctx, body.VideoID, body.Rating)
		return err
	})
	g.Go(func() error {
		var err error
		votes, err = p.dl.Votes(ctx, body.VideoID, body.Rating)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &result{object: map[string]any{
		"status":   "success",
		"likes":    likes,
		"dislikes": votes.Dislikes,
	}}, nil
}

func (p *Proxy) recommendations(r *http.Request) (*result, error) {
	items, total, err := p.yt.Activities(r.Context(), r.URL.Query().Get("max-results"))
	if err != nil {
		return nil, err
	}
	return &result{items: items, kind: "video", startIndex: startIndexOf(r), total: total}, nil
}

func (p *Proxy) subscribe(r *http.Request) (*result, error) {
	var body struct {
		ChannelID string `json:"channelId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode subscribe body")
	}

	subscriptionID, err := p.yt.Subscribe(r.Context(), body.ChannelID)
	if err != nil {
		return nil, err
	}
	return &result{object: map[string]any{
		"status":         "success",
		"subscriptionId": subscriptionID,
	}}, nil
}

func (p *Proxy) userProfile(r *http.Request) (*result, error) {
	username := r.URL.Query().Get("username")
	if username == "" {
		username = pathArg(r.URL.Path, "users")
	}

	items, err := p.yt.ChannelByUsername(r.Context(), username)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &ShapingError{Reason: "user not found", NotFound: true}
	}
	return &result{items: items[:1], kind: "user"}, nil
}

func (p *Proxy) playlists(r *http.Request) (*result, error) {
	if r.Method == http.MethodPost {
		var body struct {
			PlaylistID string `json:"playlistId"`
			MaxResults int64  `json:"maxResults"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, errors.Wrap(err, "failed to decode playlist body")
		}
		videos, err := p.it.Playlist(r.Context(), body.PlaylistID, body.MaxResults)
		if err != nil {
			return nil, err
		}
		return &result{object: videos}, nil
	}

	items, err := p.yt.Playlists(r.Context(), r.URL.Query().Get("channelId"))
	if err != nil {
		return nil, err
	}
	return &result{items: items, kind: "playlist", startIndex: startIndexOf(r)}, nil
}

func (p *Proxy) comments(r *http.Request) (*result, error) {
	videoID := r.URL.Query().Get("videoId")
	items, err := p.yt.CommentThreads(r.Context(), videoID)
	if err != nil {
		return nil, err
	}
	return &result{items: items, kind: "comment", startIndex: startIndexOf(r)}, nil
}

// videos serves the GET search path plus the two POST bodies answered
// from the internal endpoint: video detail by id, search by query.
func (p *Proxy) videos(r *http.Request) (*result, error) {
	if r.Method == http.MethodPost {
		var body struct {
			VideoID     string `json:"videoId"`
			SearchQuery string `json:"searchQuery"`
			MaxResults  int64  `json:"maxResults"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, errors.Wrap(err, "failed to decode video body")
		}
		switch {
		case body.VideoID != "":
			video, err := p.it.Player(r.Context(), body.VideoID)
			if err != nil {
				return nil, err
			}
			return &result{object: video}, nil
		case body.SearchQuery != "":
			videos, err := p.it.Search(r.Context(), body.SearchQuery, body.MaxResults)
			if err != nil {
				return nil, err
			}
			return &result{object: videos}, nil
		}
		return nil, &ShapingError{Reason: "videoId or searchQuery required"}
	}

	mapped := mapParameters(r.URL.Query(), p.now())
	items, err := p.yt.SearchVideos(r.Context(), mapped)
	if err != nil {
		return nil, err
	}
	return &result{items: items, kind: "video", startIndex: startIndexOf(r)}, nil
}

func (p *Proxy) passthrough(r *http.Request) (*result, error) {
	resource := strings.TrimPrefix(r.URL.Path, p.config.BasePath)
	items, total, err := p.yt.Forward(r.Context(), r.Method, resource, r.URL.Query())
	if err != nil {
		return nil, err
	}
	return &result{items: items, kind: kindFromPath(resource), startIndex: startIndexOf(r), total: total}, nil
}

func (p *Proxy) writeResult(w http.ResponseWriter, res *result) {
	if res.object == nil && p.config.Output == outputAtom {
		feed := buildAtomFeed(res.items, res.kind, p.now())
		data, err := renderAtom(feed)
		if err != nil {
			log.Printf("failed to render feed: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
		w.Write(data)
		return
	}

	payload := res.object
	if payload == nil {
		payload = wrapFeed(res.items, res.startIndex, res.total)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// writeError converts every handler failure into a uniform minimal
// payload. No partial responses.
func (p *Proxy) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)

	if p.config.Output == outputAtom {
		w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, "%s<error><code>%d</code><message>API Error</message></error>\n", xml.Header, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": "API Error"})
}

func startIndexOf(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("start-index"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// pathArg returns the path segment following the named one, e.g. the
// username in /feeds/api/users/GoogleDevelopers.
func pathArg(path, after string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == after && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}

func kindFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 {
		return "default"
	}
	switch segments[len(segments)-1] {
	case "videos":
		return "video"
	case "channels":
		return "channel"
	case "users":
		return "user"
	case "playlists":
		return "playlist"
	case "comments", "commentThreads":
		return "comment"
	}
	return "default"
}
