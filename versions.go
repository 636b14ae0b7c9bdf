package apkpuredl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// VersionIndex maps version labels to detail-page links as found on a listing page.
// A label seen twice is bound to its last occurrence.
type VersionIndex struct {
	Links      map[string]string
	Variants   map[string]string
	Order      []string
	Duplicates []string
}

func NewVersionIndex() *VersionIndex {
	return &VersionIndex{
		Links:    map[string]string{},
		Variants: map[string]string{},
	}
}

// Add binds label to link. A variant count set by an earlier item with the same label is kept.
func (v *VersionIndex) Add(label, link string) {
	if _, ok := v.Links[label]; ok {
		v.Duplicates = append(v.Duplicates, label)
	} else {
		v.Order = append(v.Order, label)
	}
	v.Links[label] = link
}

func (v *VersionIndex) SetVariantCount(label, count string) {
	v.Variants[label] = count
}

func (v *VersionIndex) Len() int {
	return len(v.Links)
}

// Lookup returns the detail-page link of label.
func (v *VersionIndex) Lookup(label string) (string, error) {
	if label == "" {
		return "", fmt.Errorf("%w: no version given", ErrUnknownVersion)
	}
	link, ok := v.Links[label]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownVersion, label)
	}
	return link, nil
}

// ListVersions fetches and parses the versions page of appPath.
func (c *Client) ListVersions(ctx context.Context, appPath string) (*VersionIndex, error) {
	pageURL := c.VersionsURL(appPath)
	c.log.Debug.Println("Fetching versions page:", pageURL)
	res, err := c.fetcher.GetPage(ctx, pageURL)
	if err != nil {
		c.log.Error.Println("Error fetching versions page:", pageURL, "->", err)
		return nil, err
	}
	index, err := c.parser.ParseVersions(res)
	if err != nil {
		c.log.Error.Println("Error parsing versions page:", pageURL, "->", err)
		return nil, fmt.Errorf("versions page %s: %w", pageURL, err)
	}
	for _, label := range index.Order {
		c.log.Debug.Println("Version:", label, "->", index.Links[label])
	}
	for _, label := range index.Duplicates {
		c.log.Warn.Println("Version", label, "listed more than once, using", index.Links[label])
	}
	c.log.Info.Println("Found", index.Len(), "versions at", pageURL)
	return index, nil
}

// LogVersions writes one info line per version, in page order.
func (c *Client) LogVersions(index *VersionIndex) {
	for _, label := range index.Order {
		c.log.Info.Println(c.FormatVersion(index, label))
	}
}

func (c *Client) FormatVersion(index *VersionIndex, label string) string {
	line := label + " - " + c.absURL(index.Links[label])
	if count, ok := index.Variants[label]; ok {
		line += " (" + count + ")"
	}
	return line
}

// FindAppPath searches the site for packageName and returns its app path, e.g.
// /facebook/com.facebook.katana.
func (c *Client) FindAppPath(ctx context.Context, packageName string) (string, error) {
	packageName = strings.TrimSpace(packageName)
	if packageName == "" {
		return "", fmt.Errorf("%w: empty package name", ErrAppNotFound)
	}
	res, err := c.fetcher.GetPage(ctx, c.absURL("/search?q="+url.QueryEscape(packageName)))
	if err != nil {
		c.log.Error.Println("Error fetching search page:", err)
		return "", err
	}
	path, err := c.parser.ParseSearch(res, packageName)
	if err != nil {
		c.log.Error.Println("No app page found for package:", packageName)
		return "", fmt.Errorf("%w: %s", err, packageName)
	}
	c.log.Debug.Println("App path found:", path)
	return path, nil
}
