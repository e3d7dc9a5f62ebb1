package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	config, err := parseConfig(configPath)
	if err != nil {
		fmt.Printf("failed to parse config: %v\n", err)
		return
	}

	yt, err := NewYoutubeHelper(config)
	if err != nil {
		fmt.Printf("failed to create youtube helper: %v\n", err)
		return
	}
	it := NewInnerTubeHelper(config)
	dl := NewDislikeHelper(config)

	if config.BearerToken == "" && config.ClientID != "" {
		authURL := config.OAuthConfig().AuthCodeURL("state-token", oauth2.AccessTypeOffline)
		log.Printf("no bearer token configured, authenticated operations disabled; authorize at %s", authURL)
	}

	proxy := NewProxy(config, yt, it, dl)

	mux := http.NewServeMux()
	mux.Handle(strings.TrimSuffix(config.BasePath, "/")+"/", proxy)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", config.Port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	log.Printf("gdata proxy listening on %s (output: %s)", srv.Addr, config.Output)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
