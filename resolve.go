package apkpuredl

import (
	"context"
	"fmt"
	"strings"
)

// Variant is one architecture row of a version's detail page.
type Variant struct {
	Architecture string
	Labels       []string
	Link         string
	DownloadPage string
	Cells        []string
}

// Matches reports whether any architecture label of the row equals arch, ignoring case.
func (v Variant) Matches(arch string) bool {
	arch = strings.TrimSpace(arch)
	for _, label := range v.Labels {
		if strings.EqualFold(label, arch) {
			return true
		}
	}
	return false
}

// DownloadTarget is a resolved variant waiting to be fetched.
type DownloadTarget struct {
	Version  string
	Arch     string
	PageURL  string
	AssetURL string
	Dest     string
	Size     int64
}

func (c *Client) fetchVariants(ctx context.Context, pageURL string) ([]Variant, error) {
	res, err := c.fetcher.GetPage(ctx, pageURL)
	if err != nil {
		c.log.Error.Println("Error fetching version details for URL:", pageURL, "->", err)
		return nil, err
	}
	variants, err := c.parser.ParseVariants(res)
	if err != nil {
		c.log.Error.Println("Error parsing version details for URL:", pageURL, "->", err)
		return nil, fmt.Errorf("detail page %s: %w", pageURL, err)
	}
	for i := range variants {
		if variants[i].Link != "" {
			variants[i].DownloadPage = c.absURL(variants[i].Link)
		}
		c.log.Debug.Println("Variant:", variants[i].Architecture, "->", variants[i].DownloadPage)
	}
	return variants, nil
}

// Variants lists every architecture row of version's detail page.
func (c *Client) Variants(ctx context.Context, index *VersionIndex, version string) ([]Variant, error) {
	link, err := index.Lookup(version)
	if err != nil {
		c.log.Error.Println("Cannot list variants:", err)
		return nil, err
	}
	pageURL := c.absURL(link)
	variants, err := c.fetchVariants(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		c.log.Error.Println("No variants found in the document for URL:", pageURL)
		return nil, markupError("no variant rows on %s", pageURL)
	}
	c.log.Info.Println("Found", len(variants), "variants for version", version)
	return variants, nil
}

// Resolve picks the first row of version's detail page whose architecture matches arch
// (DEFAULT_ARCH when empty). The version is checked against index before any request.
func (c *Client) Resolve(ctx context.Context, index *VersionIndex, version, arch, dest string) (*DownloadTarget, error) {
	link, err := index.Lookup(version)
	if err != nil {
		c.log.Error.Println("Cannot resolve download:", err)
		return nil, err
	}
	if strings.TrimSpace(arch) == "" {
		arch = DEFAULT_ARCH
	}
	pageURL := c.absURL(link)
	variants, err := c.fetchVariants(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		err := markupError("no variant rows on %s", pageURL)
		c.log.Error.Println(err)
		return nil, err
	}
	for _, v := range variants {
		if !v.Matches(arch) {
			continue
		}
		if v.DownloadPage == "" {
			err := markupError("row %q of version %s has no download link", v.Architecture, version)
			c.log.Error.Println(err)
			return nil, err
		}
		c.log.Info.Println(v.DownloadPage)
		return &DownloadTarget{
			Version: version,
			Arch:    arch,
			PageURL: v.DownloadPage,
			Dest:    dest,
		}, nil
	}
	c.log.Error.Println("No", arch, "variant for version", version)
	return nil, fmt.Errorf("%w: %s for version %s", ErrArchNotFound, arch, version)
}
