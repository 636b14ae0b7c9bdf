package apkpuredl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Danny-Dasilva/CycleTLS/cycletls"
	"github.com/RomainMichau/cloudscraper_go/cloudscraper"
)

// PageFetcher is the transport used by Client.
// GetPage returns the body of a 200 response. Open returns the response of a
// streamed GET whatever its status; the caller closes the body.
type PageFetcher interface {
	GetPage(ctx context.Context, url string) (string, error)
	Open(ctx context.Context, url string) (*http.Response, error)
}

type httpFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewHTTPFetcher returns a PageFetcher backed by a plain net/http client.
func NewHTTPFetcher(client *http.Client, userAgent string, timeout time.Duration) PageFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client, userAgent: userAgent, timeout: timeout}
}

func (f *httpFetcher) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrTransport, url, err)
	}
	return resp, nil
}

func (f *httpFetcher) GetPage(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	resp, err := f.do(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Op: opFetchPage, URL: url, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrTransport, url, err)
	}
	return string(body), nil
}

// Open has no overall timeout: APK bodies can take far longer than a page.
func (f *httpFetcher) Open(ctx context.Context, url string) (*http.Response, error) {
	return f.do(ctx, url)
}

// scraperFetcher gets HTML pages through cloudscraper so that the site's bot
// challenge is solved. Binary downloads go through the embedded httpFetcher
// because cycletls hands back the whole body as a string.
type scraperFetcher struct {
	*httpFetcher
	proxy string
}

func (f *scraperFetcher) options() cycletls.Options {
	// cycletls has no "no timeout" value
	secs := int(f.timeout / time.Second)
	if secs <= 0 {
		secs = 300
	}
	return cycletls.Options{
		Headers:   map[string]string{},
		Timeout:   secs,
		UserAgent: f.userAgent,
		Proxy:     f.proxy,
	}
}

func (f *scraperFetcher) GetPage(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client, err := cloudscraper.Init(false, false)
	if err != nil {
		return "", fmt.Errorf("%w: init cloudscraper: %w", ErrTransport, err)
	}
	res, err := client.Do(url, f.options(), http.MethodGet)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", ErrTransport, url, err)
	}
	if res.Status != http.StatusOK {
		return "", &StatusError{Op: opFetchPage, URL: url, Code: res.Status}
	}
	return res.Body, nil
}
