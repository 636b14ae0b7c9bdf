package apkpuredl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Fetch follows target.PageURL to its fast download link and streams the APK to
// target.Dest, truncating any existing file. A failed copy leaves the partial file.
func (c *Client) Fetch(ctx context.Context, target *DownloadTarget) error {
	if err := c.fetch(ctx, target); err != nil {
		c.log.Error.Println("Failed to download apk", err)
		return err
	}
	c.log.Info.Println("apk was saved successfully to", target.Dest)
	return nil
}

func (c *Client) fetch(ctx context.Context, target *DownloadTarget) error {
	res, err := c.fetcher.GetPage(ctx, target.PageURL)
	if err != nil {
		return err
	}
	href, err := c.parser.ParseFastDownload(res)
	if err != nil {
		return fmt.Errorf("download page %s: %w", target.PageURL, err)
	}
	target.AssetURL = c.absURL(href)
	c.log.Debug.Println("Asset URL:", target.AssetURL)

	resp, err := c.fetcher.Open(ctx, target.AssetURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: opDownload, URL: target.AssetURL, Code: resp.StatusCode}
	}

	f, err := os.Create(target.Dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", target.Dest, err)
	}
	defer f.Close()

	var w io.Writer = f
	if c.progress != nil {
		bar := c.newProgressBar(resp.ContentLength)
		defer bar.Finish()
		w = io.MultiWriter(f, bar)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", target.Dest, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target.Dest, err)
	}
	target.Size = n
	c.log.Debug.Println("Wrote", n, "bytes to", target.Dest)
	return nil
}

func (c *Client) newProgressBar(total int64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.progress)
		}),
	)
}

// Download lists the versions of appPath, resolves version/arch and fetches the APK to dest.
func (c *Client) Download(ctx context.Context, appPath, version, arch, dest string) (*DownloadTarget, error) {
	index, err := c.ListVersions(ctx, appPath)
	if err != nil {
		return nil, err
	}
	target, err := c.Resolve(ctx, index, version, arch, dest)
	if err != nil {
		return nil, err
	}
	if err := c.Fetch(ctx, target); err != nil {
		return target, err
	}
	return target, nil
}
