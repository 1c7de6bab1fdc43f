package crawler

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// session owns the browser process for one run. close is safe on all exit
// paths; the launcher cleans up its temp profile.
type session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func (c *Crawler) open(_ context.Context) (*session, error) {
	l := launcher.New().Headless(true).Logger(io.Discard)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return &session{launcher: l, browser: browser}, nil
}

func (s *session) close() {
	_ = s.browser.Close()
	s.launcher.Cleanup()
}

// openPage creates a fresh page with the crawler's identifying user agent and
// navigates it, bounded by the configured timeout. The caller closes it.
func (c *Crawler) openPage(ctx context.Context, sess *session, pageURL string) (*rod.Page, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	page, err := sess.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := (proto.NetworkSetUserAgentOverride{UserAgent: c.cfg.UserAgent}).Call(page); err != nil {
		page.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1920, Height: 1080}); err != nil {
		page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	timed := page.Timeout(c.cfg.NavTimeout)
	if err := timed.Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	if err := timed.WaitLoad(); err != nil {
		page.Close()
		return nil, fmt.Errorf("wait load %s: %w", pageURL, err)
	}
	// Give client-side rendering a moment to settle; best effort only.
	_ = page.Timeout(10 * time.Second).WaitStable(time.Second)

	return page, nil
}

const rootAnchorsJS = `() => Array.from(document.querySelectorAll('a[href]')).map(a => ({
	href: a.href,
	text: (a.innerText || '').trim(),
	has_image: !!a.querySelector('img'),
}))`

// collectRootAnchors navigates the configured root URL and harvests every
// anchor with its text and whether it wraps an image.
func (c *Crawler) collectRootAnchors(ctx context.Context, sess *session) ([]anchor, error) {
	page, err := c.openPage(ctx, sess, c.cfg.RootURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	result, err := page.Eval(rootAnchorsJS)
	if err != nil {
		return nil, fmt.Errorf("collect anchors: %w", err)
	}

	var anchors []anchor
	for _, item := range result.Value.Arr() {
		anchors = append(anchors, anchor{
			Href:     item.Get("href").Str(),
			Text:     item.Get("text").Str(),
			HasImage: item.Get("has_image").Bool(),
		})
	}
	return anchors, nil
}

const detailJS = `() => {
	const heading = document.querySelector('h1, h2');
	const main = document.querySelector('main') || document.body;
	return {
		title: heading ? heading.innerText.trim() : '',
		text: main.innerText || '',
		images: Array.from(main.querySelectorAll('img')).map(i => i.src).filter(s => s),
	};
}`

// fetchDetail renders one candidate page and extracts its title, main text
// and image URLs.
func (c *Crawler) fetchDetail(ctx context.Context, sess *session, pageURL string) (detailPage, error) {
	page, err := c.openPage(ctx, sess, pageURL)
	if err != nil {
		return detailPage{}, err
	}
	defer page.Close()

	result, err := page.Eval(detailJS)
	if err != nil {
		return detailPage{}, fmt.Errorf("extract detail: %w", err)
	}

	d := detailPage{
		Title: result.Value.Get("title").Str(),
		Text:  result.Value.Get("text").Str(),
	}
	for _, img := range result.Value.Get("images").Arr() {
		d.Images = append(d.Images, img.Str())
	}
	return d, nil
}
