package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// PageMetadata is the fixed set of fields extracted from a linked page.
// Serialized as a whole into Post.scrapedData.
type PageMetadata struct {
	URL                string `json:"url"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Keywords           string `json:"keywords,omitempty"`
	OGTitle            string `json:"ogTitle,omitempty"`
	OGDescription      string `json:"ogDescription,omitempty"`
	OGImage            string `json:"ogImage,omitempty"`
	TwitterTitle       string `json:"twitterTitle,omitempty"`
	TwitterDescription string `json:"twitterDescription,omitempty"`
	TwitterImage       string `json:"twitterImage,omitempty"`
	CanonicalURL       string `json:"canonicalUrl,omitempty"`
	Author             string `json:"author,omitempty"`
	PublishDate        string `json:"publishDate,omitempty"`
}

// MetadataScraper fetches a linked page and extracts its metadata tags.
type MetadataScraper struct {
	client *resty.Client
}

func NewMetadataScraper(timeout time.Duration) *MetadataScraper {
	c := resty.New()
	c.SetTimeout(timeout)
	return &MetadataScraper{client: c}
}

// Scrape fetches the page at url and returns the extracted metadata
// serialized to JSON. Callers treat any error as "no data": scrape failure
// never fails the surrounding operation.
func (s *MetadataScraper) Scrape(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parsePageMetadata(url, body)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func parsePageMetadata(url string, body []byte) (PageMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageMetadata{}, fmt.Errorf("parse html: %w", err)
	}

	attr := func(sel, name string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr(name); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}
	content := func(sel string) string {
		return attr(sel, "content")
	}

	return PageMetadata{
		URL:                url,
		Title:              strings.TrimSpace(doc.Find("head title").First().Text()),
		Description:        content(`meta[name="description"]`),
		Keywords:           content(`meta[name="keywords"]`),
		OGTitle:            content(`meta[property="og:title"]`),
		OGDescription:      content(`meta[property="og:description"]`),
		OGImage:            content(`meta[property="og:image"]`),
		TwitterTitle:       content(`meta[name="twitter:title"]`),
		TwitterDescription: content(`meta[name="twitter:description"]`),
		TwitterImage:       content(`meta[name="twitter:image"]`),
		CanonicalURL:       attr(`link[rel="canonical"]`, "href"),
		Author:             content(`meta[name="author"]`),
		PublishDate:        content(`meta[property="article:published_time"]`),
	}, nil
}
