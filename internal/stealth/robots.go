package stealth

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsCacheTTL = 1 * time.Hour

// RobotsChecker fetches and caches robots.txt rules per origin. When the
// checker is disabled, or robots.txt cannot be fetched, requests are allowed.
type RobotsChecker struct {
	mu      sync.Mutex
	rules   map[string]*robotstxt.RobotsData
	expiry  map[string]time.Time
	client  *http.Client
	enabled bool
}

// NewRobotsChecker creates a robots.txt checker backed by the given client.
func NewRobotsChecker(client *http.Client, enabled bool) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		rules:   make(map[string]*robotstxt.RobotsData),
		expiry:  make(map[string]time.Time),
		client:  client,
		enabled: enabled,
	}
}

// IsAllowed reports whether rawURL may be fetched under userAgent.
func (r *RobotsChecker) IsAllowed(userAgent, rawURL string) (bool, error) {
	if !r.enabled {
		return true, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}

	data, err := r.origin(u.Scheme + "://" + u.Host)
	if err != nil {
		// Unreachable robots.txt does not block the crawl.
		return true, nil
	}
	return data.FindGroup(userAgent).Test(u.Path), nil
}

func (r *RobotsChecker) origin(origin string) (*robotstxt.RobotsData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.rules[origin]; ok && time.Now().Before(r.expiry[origin]) {
		return data, nil
	}

	resp, err := r.client.Get(origin + "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.rules[origin] = data
	r.expiry[origin] = time.Now().Add(robotsCacheTTL)
	return data, nil
}
