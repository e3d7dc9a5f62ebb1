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

// DislikeHelper talks to the third-party counter for the dislike
// numbers the v3 API stopped exposing.
type DislikeHelper struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewDislikeHelper(cfg *Config) *DislikeHelper {
	return &DislikeHelper{
		baseURL: cfg.DislikeBaseURL,
		client:  &http.Client{},
		timeout: cfg.UpstreamTimeout(),
	}
}

type VoteResult struct {
	ID       string `json:"id"`
	Likes    int64  `json:"likes"`
	Dislikes int64  `json:"dislikes"`
}

func (h *DislikeHelper) Votes(ctx context.Context, videoID, rating string) (*VoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"videoId": videoID,
		"rating":  rating,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode vote")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/votes", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, upstreamFailure("dislikes", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &UpstreamError{Service: "dislikes", Status: resp.StatusCode, Err: errors.New(string(body))}
	}

	result := &VoteResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, &UpstreamError{Service: "dislikes", Err: errors.Wrap(err, "failed to decode response")}
	}
	return result, nil
}
