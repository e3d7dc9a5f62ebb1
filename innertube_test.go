package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const searchFixture = `{
	"contents": {"twoColumnSearchResultsRenderer": {"primaryContents": {"sectionListRenderer": {"contents": [
		{"itemSectionRenderer": {"contents": [
			{"videoRenderer": {
				"videoId": "v1",
				"title": {"runs": [{"text": "First"}]},
				"descriptionSnippet": {"runs": [{"text": "about first"}]},
				"thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/v1/default.jpg"}]}
			}},
			{"shelfRenderer": {"title": {"simpleText": "People also watched"}}},
			{"videoRenderer": {
				"videoId": "v2",
				"title": {"runs": [{"text": "Second"}]},
				"thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/v2/default.jpg"}]}
			}}
		]}}
	]}}}}
}`

const playerFixture = `{
	"videoDetails": {
		"videoId": "v1",
		"title": "Hello",
		"shortDescription": "a greeting",
		"lengthSeconds": "253",
		"thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/v1/default.jpg"}]}
	}
}`

const playlistFixture = `{
	"contents": {"twoColumnBrowseResultsRenderer": {"tabs": [{"tabRenderer": {"content": {"sectionListRenderer": {"contents": [
		{"itemSectionRenderer": {"contents": [
			{"playlistVideoListRenderer": {"contents": [
				{"playlistVideoRenderer": {"videoId": "p1", "title": {"runs": [{"text": "Track one"}]}, "thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/p1/default.jpg"}]}}},
				{"playlistVideoRenderer": {"videoId": "p2", "title": {"runs": [{"text": "Track two"}]}, "thumbnail": {"thumbnails": []}}}
			]}}
		]}}
	]}}}}]}}
}`

func fakeInnerTube(t *testing.T) *InnerTubeHelper {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla/5.0") {
			t.Errorf("request missing browser user agent, got %q", ua)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if _, ok := body["context"]; !ok {
			t.Error("request body missing context")
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/search"):
			w.Write([]byte(searchFixture))
		case strings.HasSuffix(r.URL.Path, "/player"):
			w.Write([]byte(playerFixture))
		case strings.HasSuffix(r.URL.Path, "/playlist"):
			w.Write([]byte(playlistFixture))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	cfg := &Config{InnerTubeBaseURL: server.URL, UpstreamTimeoutSeconds: 5}
	return NewInnerTubeHelper(cfg)
}

func Test_InnerTube_Search(t *testing.T) {
	h := fakeInnerTube(t)

	results, err := h.Search(context.Background(), "greetings", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].VideoID != "v1" || results[0].Title != "First" || results[0].Description != "about first" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].VideoID != "v2" || results[1].Description != "" {
		t.Errorf("unexpected second result: %+v", results[1])
	}
}

func Test_InnerTube_Search_maxResults(t *testing.T) {
	h := fakeInnerTube(t)

	results, err := h.Search(context.Background(), "greetings", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func Test_InnerTube_Player(t *testing.T) {
	h := fakeInnerTube(t)

	video, err := h.Player(context.Background(), "v1")
	if err != nil {
		t.Fatal(err)
	}
	if video.VideoID != "v1" || video.Title != "Hello" || video.Duration != "253" {
		t.Errorf("unexpected video: %+v", video)
	}
	if video.Description != "a greeting" {
		t.Errorf("description = %q", video.Description)
	}
}

func Test_InnerTube_Player_notFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	h := NewInnerTubeHelper(&Config{InnerTubeBaseURL: server.URL, UpstreamTimeoutSeconds: 5})

	_, err := h.Player(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing video details")
	}
}

func Test_InnerTube_Playlist(t *testing.T) {
	h := fakeInnerTube(t)

	videos, err := h.Playlist(context.Background(), "PLx", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].VideoID != "p1" || videos[1].VideoID != "p2" {
		t.Errorf("unexpected playlist order: %+v", videos)
	}
}

func Test_InnerTube_upstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)
	h := NewInnerTubeHelper(&Config{InnerTubeBaseURL: server.URL, UpstreamTimeoutSeconds: 5})

	_, err := h.Search(context.Background(), "q", 10)
	if err == nil {
		t.Fatal("expected error")
	}
}
