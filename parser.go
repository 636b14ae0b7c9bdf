package apkpuredl

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parser extracts domain values from site pages. It is the only place that knows
// the site's markup; hrefs are returned as found in the page.
type Parser interface {
	ParseVersions(html string) (*VersionIndex, error)
	ParseVariants(html string) ([]Variant, error)
	ParseFastDownload(html string) (string, error)
	ParseSearch(html, packageName string) (string, error)
}

type apkpureParser struct{}

func newDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, markupError("parse document: %v", err)
	}
	return doc, nil
}

func (apkpureParser) ParseVersions(html string) (*VersionIndex, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}
	list := doc.Find("ul.ver-wrap").First()
	if list.Length() == 0 {
		return nil, markupError("no ul.ver-wrap version list")
	}

	index := NewVersionIndex()
	var parseErr error
	list.Find("li").EachWithBreak(func(i int, li *goquery.Selection) bool {
		href, ok := li.Find("a[href]").First().Attr("href")
		if !ok {
			parseErr = markupError("version item %d has no link", i)
			return false
		}
		item := li.Find("div.ver-item").First()
		label := item.Find("span.ver-item-n").First()
		if label.Length() == 0 {
			parseErr = markupError("version item %d has no label", i)
			return false
		}
		name := strings.TrimSpace(label.Text())
		index.Add(name, href)
		if count := item.Find("span.ver-n").First(); count.Length() > 0 {
			index.SetVariantCount(name, strings.TrimSpace(count.Text()))
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return index, nil
}

func (apkpureParser) ParseVariants(html string) ([]Variant, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}
	var variants []Variant
	doc.Find("div.table-row").Each(func(i int, row *goquery.Selection) {
		var labels []string
		row.Find("div.table-cell.dowrap").Each(func(_ int, cell *goquery.Selection) {
			labels = append(labels, strings.TrimSpace(cell.Text()))
		})
		if len(labels) == 0 {
			// header rows carry no architecture cell
			return
		}
		var cells []string
		row.Find("div.table-cell").Each(func(_ int, cell *goquery.Selection) {
			if text := strings.Join(strings.Fields(cell.Text()), " "); text != "" {
				cells = append(cells, text)
			}
		})
		v := Variant{
			Architecture: labels[0],
			Labels:       labels,
			Cells:        cells,
		}
		v.Link, _ = row.Find("div.table-cell.down a[href]").First().Attr("href")
		variants = append(variants, v)
	})
	return variants, nil
}

func (apkpureParser) ParseFastDownload(html string) (string, error) {
	doc, err := newDocument(html)
	if err != nil {
		return "", err
	}
	box := doc.Find("div.fast-download-box.fast-bottom").First()
	if box.Length() == 0 {
		return "", markupError("no fast download box")
	}
	href, ok := box.Find("a.ga[href]").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", markupError("fast download box has no link")
	}
	return href, nil
}

// ParseSearch finds the first /<slug>/<packageName> path in a search results page.
func (apkpureParser) ParseSearch(html, packageName string) (string, error) {
	r, err := regexp.Compile(`(/[^/"'\s]+/` + regexp.QuoteMeta(packageName) + `)(?:[/"'?#\s]|$)`)
	if err != nil {
		return "", err
	}
	match := r.FindStringSubmatch(html)
	if match == nil {
		return "", ErrAppNotFound
	}
	return match[1], nil
}
