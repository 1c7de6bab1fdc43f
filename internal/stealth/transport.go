package stealth

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// ThrottledTransport is an http.RoundTripper for raw outbound fetches (image
// downloads, robots.txt): it applies the crawler's fixed identifying
// user agent and browser-like headers, consults robots.txt, and waits on the
// shared token bucket before sending. Page navigation goes through the
// headless browser instead and is paced separately.
type ThrottledTransport struct {
	Base        http.RoundTripper
	UserAgent   string
	Headers     http.Header
	Robots      *RobotsChecker
	RateLimiter *rate.Limiter
}

func (t *ThrottledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}
	for key, vals := range t.Headers {
		if req.Header.Get(key) == "" {
			for _, v := range vals {
				req.Header.Add(key, v)
			}
		}
	}

	if t.Robots != nil {
		allowed, err := t.Robots.IsAllowed(t.UserAgent, req.URL.String())
		if err == nil && !allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", req.URL.Path)
		}
	}

	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
