// Package fetch provides politeness-bounded HTTP fetching for one crawl.
//
// # Components
//
//   - Fetcher: rate-limited page and image retrieval with a per-crawl
//     visited set and optional forward proxy
//   - Error/Kind: typed failure classification so the crawler can decide
//     per-kind recovery
//
// # Politeness
//
// The fetcher is designed to be polite to documentation hosts:
//   - A shared rate limiter bounds the request rate across all workers
//   - robots.txt is honored unless explicitly disabled
//   - Each URL is fetched at most once per crawl, even after a failure
//   - Response bodies are size-limited
//
// # Three-way fetch results
//
// A fetch has three outcomes: fetched, already visited, or failed. The
// first two are Result statuses; failures are *fetch.Error values carrying
// a Kind. Callers must never treat an already-visited result as a failure:
//
//	res, err := fetcher.Fetch(ctx, href)
//	if err != nil { /* placeholder page */ }
//	if res.Status == fetch.StatusAlreadyVisited { /* skip, no page */ }
package fetch
