package apkpuredl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherGetPage(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "apkpuredl-test", time.Second)

	body, err := f.GetPage(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, "apkpuredl-test", ua)

	_, err = f.GetPage(context.Background(), srv.URL+"/gone")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusGone, statusErr.Code)
	assert.Equal(t, "fetch page: status 410", err.Error())
	assert.NotErrorIs(t, err, ErrDownloadFailed)
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "", 50*time.Millisecond)
	_, err := f.GetPage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcherOpenReturnsAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	resp, err := NewHTTPFetcher(srv.Client(), "", 0).Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestScraperFetcherOptions(t *testing.T) {
	f := &scraperFetcher{
		httpFetcher: &httpFetcher{userAgent: "ua", timeout: 15 * time.Second},
		proxy:       "http://127.0.0.1:7890",
	}
	opts := f.options()
	assert.Equal(t, 15, opts.Timeout)
	assert.Equal(t, "ua", opts.UserAgent)
	assert.Equal(t, "http://127.0.0.1:7890", opts.Proxy)
	assert.NotNil(t, opts.Headers)

	f.timeout = 0
	assert.Equal(t, 300, f.options().Timeout)
}

func TestScraperFetcherHonoursCanceledContext(t *testing.T) {
	f := &scraperFetcher{httpFetcher: &httpFetcher{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.GetPage(ctx, "https://apkpure.com")
	assert.ErrorIs(t, err, context.Canceled)
}
