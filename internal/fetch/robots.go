package fetch

import (
	"context"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsAgent is the product token matched against robots.txt groups.
const robotsAgent = "gitbook2pdf"

// robotsPolicy caches the crawl root's robots.txt, loaded at most once per
// crawl. A failure to fetch or parse robots.txt allows everything: the
// crawl should not fail because a site lacks the file.
type robotsPolicy struct {
	once sync.Once
	data *robotstxt.RobotsData
}

// allowedByRobots reports whether robots.txt permits fetching the URL.
func (f *Fetcher) allowedByRobots(ctx context.Context, u *url.URL) bool {
	f.robots.once.Do(func() {
		robotsURL := (&url.URL{Scheme: f.base.Scheme, Host: f.base.Host, Path: "/robots.txt"}).String()
		body, err := f.get(ctx, robotsURL)
		if err != nil {
			f.logger.Debug("robots.txt not available, allowing all", "url", robotsURL, "error", err)
			return
		}
		data, err := robotstxt.FromBytes(body)
		if err != nil {
			f.logger.Debug("robots.txt unparseable, allowing all", "url", robotsURL, "error", err)
			return
		}
		f.robots.data = data
	})

	if f.robots.data == nil {
		return true
	}
	return f.robots.data.TestAgent(u.Path, robotsAgent)
}
