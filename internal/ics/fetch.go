package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	appLog "daycal/internal/log"
)

// maxBodySize caps a single ICS payload.
const maxBodySize = 16 << 20

// Source represents a single ICS source.
type Source struct {
	// ID is an internal identifier (e.g., config ICS ID).
	ID string
	// URL is an http(s) endpoint, a file:// URL or a plain filesystem path.
	URL string
}

// FetchResult contains the outcome of loading a single ICS source.
type FetchResult struct {
	Source Source
	Body   []byte
}

// Fetcher loads ICS payloads from local files or over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a 15s-timeout default.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// FetchAll loads all given sources. Errors for individual sources are
// logged and returned in the error slice; the result slice only holds
// sources that produced a body.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	errs := make([]error, 0)

	for _, src := range sources {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			errs = append(errs, fmt.Errorf("ics %s: %w", src.ID, err))
			appLog.Error("ics fetch failed", err, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		results = append(results, res)
	}

	return results, errs
}

// FetchOne loads a single ICS source.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	var (
		body []byte
		err  error
	)
	if isHTTP(src.URL) {
		body, err = f.fetchHTTP(ctx, src)
	} else {
		body, err = readFile(strings.TrimPrefix(src.URL, "file://"))
	}
	if err != nil {
		return FetchResult{}, err
	}

	appLog.Info("ics fetch success", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
	return FetchResult{Source: src, Body: body}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	appLog.Debug("ics fetch start", "id", src.ID, "url", redactURL(src.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return io.ReadAll(io.LimitReader(fh, maxBodySize))
}

func isHTTP(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// redactURL hides sensitive parts of an ICS URL for logging purposes.
//
//	https://example.com/path/to/private.ics?token=abcd
//	-> https://example.com/...(redacted)
//
// Local paths are logged as-is.
func redactURL(u string) string {
	if !isHTTP(u) {
		return u
	}
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://") + 3
	j := strings.IndexByte(u[i:], '/')
	if j < 0 {
		return u
	}
	return u[:i+j] + redactedSuffix
}
