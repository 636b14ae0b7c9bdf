package apkpuredl

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	ConfigEnv  = "APKPUREDL_CONFIG"
	ConfigFile = "apkpuredl.toml"
)

// Config holds the settings a CLI run reads from apkpuredl.toml.
type Config struct {
	BaseURL        string `toml:"base_url"`
	Arch           string `toml:"arch"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
	Proxy          string `toml:"proxy"`
	PlainHTTP      bool   `toml:"plain_http"`
	Debug          bool   `toml:"debug"`
	Progress       bool   `toml:"progress"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        URL_BASE,
		Arch:           DEFAULT_ARCH,
		TimeoutSeconds: int(DEFAULT_TIMEOUT / time.Second),
		UserAgent:      DEFAULT_USER_AGENT,
	}
}

// LoadConfig reads the config file.
// Priority: path > APKPUREDL_CONFIG > ./apkpuredl.toml. Only the last may be absent,
// in which case defaults are returned.
func LoadConfig(path string) (*Config, error) {
	optional := false
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path == "" {
		path = ConfigFile
		optional = true
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	var fileCfg Config
	if err := tree.Unmarshal(&fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.merge(fileCfg)
	// 0 disables the page timeout, so it cannot mean "unset"
	if tree.Has("timeout_seconds") {
		cfg.TimeoutSeconds = fileCfg.TimeoutSeconds
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// merge copies the non-zero fields of o into c.
func (c *Config) merge(o Config) {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Arch != "" {
		c.Arch = o.Arch
	}
	if o.TimeoutSeconds != 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Proxy != "" {
		c.Proxy = o.Proxy
	}
	c.PlainHTTP = c.PlainHTTP || o.PlainHTTP
	c.Debug = c.Debug || o.Debug
	c.Progress = c.Progress || o.Progress
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	if c.Arch == "" {
		return fmt.Errorf("arch must be set")
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("invalid proxy %q: %w", c.Proxy, err)
		}
	}
	return nil
}

// Options turns the config into client options. Logs and the progress bar go to w.
func (c *Config) Options(w io.Writer) []Option {
	opts := []Option{
		WithBaseURL(c.BaseURL),
		WithTimeout(time.Duration(c.TimeoutSeconds) * time.Second),
		WithUserAgent(c.UserAgent),
		WithProxy(c.Proxy),
		WithPlainHTTP(c.PlainHTTP),
		WithLogger(NewLogger(w, c.Debug)),
	}
	if c.Progress {
		opts = append(opts, WithProgress(w))
	}
	return opts
}
