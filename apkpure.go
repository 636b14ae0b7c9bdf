package apkpuredl

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const URL_BASE = "https://apkpure.com"
const DEFAULT_ARCH = "x86"
const DEFAULT_TIMEOUT = 10 * time.Second
const DEFAULT_USER_AGENT = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Logger groups the leveled loggers a Client writes to.
type Logger struct {
	Debug *log.Logger
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
}

// NewLogger returns a Logger writing to w. Debug output is discarded unless debug is set.
func NewLogger(w io.Writer, debug bool) *Logger {
	l := &Logger{
		Debug: log.New(io.Discard, "[D] ", log.LstdFlags|log.Lshortfile),
		Info:  log.New(w, "[I] ", log.LstdFlags|log.Lshortfile),
		Warn:  log.New(w, "[W] ", log.LstdFlags|log.Lshortfile),
		Error: log.New(w, "[E] ", log.LstdFlags|log.Lshortfile),
	}
	if debug {
		l.Debug.SetOutput(w)
	}
	return l
}

var defaultLogger = NewLogger(log.Writer(), false)

// EnableDebug toggles debug output of the logger used by clients built without WithLogger.
func EnableDebug(enable bool) {
	if enable {
		defaultLogger.Debug.SetOutput(defaultLogger.Info.Writer())
	} else {
		defaultLogger.Debug.SetOutput(io.Discard)
	}
}

// Client scrapes an apkpure-like site: list versions, resolve a variant, fetch the APK.
type Client struct {
	baseURL   *url.URL
	fetcher   PageFetcher
	parser    Parser
	log       *Logger
	progress  io.Writer
	timeout   time.Duration
	userAgent string
	proxy     string
	plainHTTP bool
}

type Option func(*Client) error

// WithBaseURL overrides URL_BASE.
func WithBaseURL(base string) Option {
	return func(c *Client) error {
		if base == "" {
			return nil
		}
		u, err := url.Parse(strings.TrimRight(base, "/"))
		if err != nil {
			return fmt.Errorf("invalid base url %q: %w", base, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid base url %q: scheme must be http or https", base)
		}
		c.baseURL = u
		return nil
	}
}

// WithFetcher replaces the transport used for every request.
func WithFetcher(f PageFetcher) Option {
	return func(c *Client) error {
		c.fetcher = f
		return nil
	}
}

// WithParser replaces the markup parser.
func WithParser(p Parser) Option {
	return func(c *Client) error {
		c.parser = p
		return nil
	}
}

func WithLogger(l *Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// WithProgress renders a byte progress bar to w while the APK is copied.
func WithProgress(w io.Writer) Option {
	return func(c *Client) error {
		c.progress = w
		return nil
	}
}

// WithTimeout bounds each page request. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("negative timeout %s", d)
		}
		c.timeout = d
		return nil
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua != "" {
			c.userAgent = ua
		}
		return nil
	}
}

// WithProxy routes every request through the given proxy URL.
func WithProxy(proxy string) Option {
	return func(c *Client) error {
		c.proxy = proxy
		return nil
	}
}

// WithPlainHTTP fetches pages with net/http instead of the cloudscraper client.
func WithPlainHTTP(plain bool) Option {
	return func(c *Client) error {
		c.plainHTTP = plain
		return nil
	}
}

func NewClient(opts ...Option) (*Client, error) {
	base, _ := url.Parse(URL_BASE)
	c := &Client{
		baseURL:   base,
		parser:    apkpureParser{},
		log:       defaultLogger,
		timeout:   DEFAULT_TIMEOUT,
		userAgent: DEFAULT_USER_AGENT,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.fetcher == nil {
		f, err := c.newFetcher()
		if err != nil {
			return nil, err
		}
		c.fetcher = f
	}
	return c, nil
}

func (c *Client) newFetcher() (PageFetcher, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.proxy != "" {
		p, err := url.Parse(c.proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", c.proxy, err)
		}
		transport.Proxy = http.ProxyURL(p)
	}
	hf := &httpFetcher{
		client:    &http.Client{Transport: transport},
		userAgent: c.userAgent,
		timeout:   c.timeout,
	}
	if c.plainHTTP {
		return hf, nil
	}
	return &scraperFetcher{
		httpFetcher: hf,
		proxy:       c.proxy,
	}, nil
}

// BaseURL returns the site root every relative link is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// absURL resolves href against the base URL. Absolute hrefs are returned as is.
func (c *Client) absURL(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return c.baseURL.String() + href
	}
	return c.baseURL.ResolveReference(ref).String()
}

// VersionsURL builds the listing page URL for appPath, which may be a full URL
// on the site, a path like /facebook/com.facebook.katana, or the same with /versions.
func (c *Client) VersionsURL(appPath string) string {
	p := strings.TrimSpace(appPath)
	p = strings.TrimPrefix(p, c.baseURL.String())
	p = strings.TrimPrefix(p, URL_BASE)
	p = strings.TrimRight(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/versions") {
		p += "/versions"
	}
	return c.absURL(p)
}
