package main

import (
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputAtom = "atom"
)

type Config struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	// Output selects the deployment-wide response variant, json or
	// atom. Chosen once, never per request.
	Output string `yaml:"output"`

	APIKey       string `yaml:"api_key"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	BearerToken  string `yaml:"bearer_token"`

	UpstreamTimeoutSeconds int `yaml:"upstream_timeout_seconds"`

	YoutubeBaseURL   string `yaml:"youtube_base_url"`
	InnerTubeBaseURL string `yaml:"innertube_base_url"`
	DislikeBaseURL   string `yaml:"dislike_base_url"`
}

func parseConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &Config{}
	err = decoder.Decode(config)
	if err != nil {
		return nil, err
	}
	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.BasePath == "" {
		c.BasePath = "/feeds/api"
	}
	if c.Output == "" {
		c.Output = outputJSON
	}
	if c.UpstreamTimeoutSeconds == 0 {
		c.UpstreamTimeoutSeconds = 10
	}
	if c.YoutubeBaseURL == "" {
		c.YoutubeBaseURL = "https://www.googleapis.com"
	}
	if c.InnerTubeBaseURL == "" {
		c.InnerTubeBaseURL = "https://www.youtube.com/youtubei/v1"
	}
	if c.DislikeBaseURL == "" {
		c.DislikeBaseURL = "https://returnyoutubedislikeapi.com"
	}
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// OAuthConfig drives the consent flow that produces the bearer token.
func (c *Config) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       []string{youtube.YoutubeScope},
		Endpoint:     google.Endpoint,
	}
}
