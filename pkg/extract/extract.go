package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"feedscraper/pkg/browser"
	errs "feedscraper/pkg/errors"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/models"

	"github.com/PuerkitoBio/goquery"
)

var (
	statusPattern    = regexp.MustCompile(`/status/(\d+)`)
	mediaSizePattern = regexp.MustCompile(`([?&])name=\w+`)
)

const mediaHost = "pbs.twimg.com/media"

// Extractor turns what a page currently renders into content items
type Extractor interface {
	Extract(ctx context.Context, page browser.Page, account string) ([]models.ContentItem, error)
}

// Parser reads content items out of rendered profile HTML. It keeps no
// state between calls and is safe for concurrent use.
type Parser struct {
	log     logger.Logger
	baseURL string
	now     func() time.Time
}

// NewParser creates a parser resolving permalinks against baseURL
func NewParser(baseURL string, log logger.Logger) *Parser {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Parser{
		log:     log.WithField("component", "extract"),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for items without a timestamp
func (p *Parser) WithClock(now func() time.Time) *Parser {
	p.now = now
	return p
}

// Extract snapshots the page and parses the snapshot
func (p *Parser) Extract(ctx context.Context, page browser.Page, account string) ([]models.ContentItem, error) {
	html, err := page.Snapshot(ctx)
	if err != nil {
		return nil, errs.ForAccount(account, err)
	}
	return p.Parse(html, account)
}

// Parse returns the items rendered in html, in document order. Containers
// without a recognizable permalink are skipped. The returned slice may hold
// the same id twice if the page rendered it twice; callers deduplicate.
func (p *Parser) Parse(html, account string) ([]models.ContentItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeExtractionTransient, err, "parse snapshot")
	}

	account = models.NormalizeAccount(account)
	items := []models.ContentItem{}

	doc.Find(browser.ItemContainer).Each(func(i int, container *goquery.Selection) {
		item, err := p.parseContainer(container, account)
		if err != nil {
			if errs.TypeOf(err) == errs.ErrorTypeExtractionTransient {
				p.log.WithFields(map[string]interface{}{
					"account":   account,
					"container": i,
				}).WithError(err).Debug("Skipping container")
			} else {
				p.log.WithFields(map[string]interface{}{
					"account":   account,
					"container": i,
				}).WithError(err).Warn("Failed to parse container")
			}
			return
		}
		items = append(items, item)
	})

	return items, nil
}

func (p *Parser) parseContainer(container *goquery.Selection, account string) (item models.ContentItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing container: %v", r)
		}
	}()

	href, ok := container.Find(browser.ItemPermalink).First().Attr("href")
	if !ok {
		return item, errs.New(errs.ErrorTypeExtractionTransient, "container has no permalink")
	}
	id, permalink, ok := p.permalink(href)
	if !ok {
		return item, errs.New(errs.ErrorTypeExtractionTransient, "permalink %q has no status id", href)
	}

	item = models.ContentItem{
		ID:        id,
		Author:    account,
		Text:      strings.TrimSpace(container.Find(browser.ItemText).First().Text()),
		CreatedAt: p.timestamp(container),
		URL:       permalink,
		MediaURLs: mediaURLs(container),
	}

	if author := renderedAuthor(container); author != "" && author != account {
		item.Author = author
		item.IsRepost = true
		item.OriginalAuthor = author
	}

	return item, nil
}

// permalink extracts the status id from href and returns the canonical
// absolute link ending at the id.
func (p *Parser) permalink(href string) (string, string, bool) {
	loc := statusPattern.FindStringSubmatchIndex(href)
	if loc == nil {
		return "", "", false
	}
	id := href[loc[2]:loc[3]]
	trimmed := href[:loc[1]]

	base, err := url.Parse(p.baseURL + "/")
	if err != nil {
		return id, trimmed, true
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return id, trimmed, true
	}
	return id, base.ResolveReference(ref).String(), true
}

func (p *Parser) timestamp(container *goquery.Selection) time.Time {
	raw, ok := container.Find(browser.ItemTimestamp).First().Attr("datetime")
	if !ok || raw == "" {
		return p.now()
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		p.log.WithField("datetime", raw).Debug("Unparsable timestamp, using current time")
		return p.now()
	}
	return ts.UTC()
}

// renderedAuthor returns the lower-cased handle shown in the item header.
// The header links the display name first and the handle second.
func renderedAuthor(container *goquery.Selection) string {
	links := container.Find(browser.ItemAuthor).First().Find("a[href]")
	if links.Length() == 0 {
		return ""
	}
	link := links.First()
	if links.Length() >= 2 {
		link = links.Eq(1)
	}
	href, _ := link.Attr("href")
	href = strings.TrimRight(href, "/")
	if i := strings.LastIndex(href, "/"); i >= 0 {
		href = href[i+1:]
	}
	return models.NormalizeAccount(href)
}

// mediaURLs collects attached photos at original resolution
func mediaURLs(container *goquery.Selection) []string {
	urls := []string{}
	seen := map[string]bool{}
	container.Find(browser.ItemPhoto).Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if !strings.Contains(src, mediaHost) {
			return
		}
		src = OriginalSize(src)
		if seen[src] {
			return
		}
		seen[src] = true
		urls = append(urls, src)
	})
	return urls
}

// OriginalSize rewrites a media URL's size parameter to request the
// original upload.
func OriginalSize(src string) string {
	return mediaSizePattern.ReplaceAllString(src, "${1}name=orig")
}
