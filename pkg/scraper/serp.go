package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstResultLink returns the first organic result from a search results page.
// Result containers are div.g; without javascript the anchors are /url?q=<target> redirects.
// If no container matches, the first absolute link off the search engine is used instead.
func FirstResultLink(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var link string
	doc.Find("div.g a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		link = resultTarget(s.AttrOr("href", ""))
		return link == ""
	})
	if link != "" {
		return link, nil
	}

	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		link = resultTarget(s.AttrOr("href", ""))
		return link == ""
	})
	if link == "" {
		return "", ErrNoResults
	}
	return link, nil
}

// resultTarget unwraps a redirect href, returning "" for anything that isn't an external page
func resultTarget(href string) string {
	if strings.HasPrefix(href, "/url?") {
		u, err := url.Parse(href)
		if err != nil {
			return ""
		}
		href = u.Query().Get("q")
	}
	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	if strings.Contains(u.Hostname(), "google.") {
		return ""
	}
	return href
}
