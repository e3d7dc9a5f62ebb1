package main

import (
	"net/url"
	"time"
)

type paramKind int

const (
	paramRename paramKind = iota
	paramEnum
	paramWindow
	paramMerge
)

type paramRule struct {
	kind   paramKind
	target string
	enum   map[string]string
	days   map[string]int
	merge  map[string]map[string]any
}

// paramTable is the canonical legacy-to-v3 mapping.
var paramTable = map[string]paramRule{
	"q":           {kind: paramRename, target: "q"},
	"max-results": {kind: paramRename, target: "maxResults"},
	// The two pagination schemes are not compatible and no real
	// translation is derivable; the numeric offset passes through as
	// an opaque token.
	"start-index": {kind: paramRename, target: "pageToken"},
	"duration":    {kind: paramRename, target: "videoDuration"},
	"orderby": {kind: paramEnum, target: "order", enum: map[string]string{
		"relevance": "relevance",
		"published": "date",
		"viewCount": "viewCount",
		"rating":    "rating",
	}},
	"time": {kind: paramWindow, target: "publishedAfter", days: map[string]int{
		"today":      1,
		"this_week":  7,
		"this_month": 30,
	}},
	// uploader is the only key whose mapped value is a structure
	// rather than a replacement name.
	"uploader": {kind: paramMerge, merge: map[string]map[string]any{
		"partner": {"videoSyndicated": true, "type": "video"},
		"youtube": {"type": "video", "videoType": "any"},
	}},
}

// mapParameters translates a legacy query into its v3 equivalent.
// Unknown keys are dropped without error.
func mapParameters(legacy url.Values, now time.Time) map[string]any {
	mapped := make(map[string]any)
	for key := range legacy {
		rule, ok := paramTable[key]
		if !ok {
			continue
		}
		value := legacy.Get(key)
		switch rule.kind {
		case paramRename:
			mapped[rule.target] = value
		case paramEnum:
			if v, ok := rule.enum[value]; ok {
				mapped[rule.target] = v
			}
		case paramWindow:
			if days, ok := rule.days[value]; ok {
				mapped[rule.target] = now.AddDate(0, 0, -days).UTC().Format(time.RFC3339)
			}
		case paramMerge:
			for k, v := range rule.merge[value] {
				mapped[k] = v
			}
		}
	}
	return mapped
}
