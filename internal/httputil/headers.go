package httputil

import "net/http"

// CrawlerUserAgent is the fixed identifying user agent sent on every request
// the pipeline makes against the source site, browser navigation included.
// Operators of the source site can recognize and contact us from it.
const CrawlerUserAgent = "BoutikScrapBot/1.0 (+https://github.com/medkadi/boutik-scrap)"

// BrowserHeaders returns the accept headers a desktop browser would send.
// They ride alongside the identifying user agent so content negotiation
// behaves like a regular visit.
func BrowserHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Connection", "keep-alive")
	return h
}
