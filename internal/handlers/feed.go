package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"quill/internal/models"
	"quill/internal/services"
	"quill/internal/utils"
)

const (
	feedItems    = 20
	sitemapPosts = 500
	leadBlocks   = 3
)

// FeedHandler serves the RSS feed and sitemap for published posts.
type FeedHandler struct {
	base
	posts    *services.PostService
	siteURL  string
	siteName string
}

func NewFeedHandler(posts *services.PostService, siteURL, siteName string, production bool) *FeedHandler {
	return &FeedHandler{
		base:     base{production: production},
		posts:    posts,
		siteURL:  strings.TrimRight(siteURL, "/"),
		siteName: siteName,
	}
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description cdata  `xml:"description"`
	Author      string `xml:"author,omitempty"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

func (h *FeedHandler) postURL(p *models.Post) string {
	return fmt.Sprintf("%s/blog/%s", h.siteURL, p.Slug)
}

// Sitemap lists the front page, taxonomy indexes and recent published posts.
func (h *FeedHandler) Sitemap(c *gin.Context) {
	result, err := h.posts.ListPosts(c.Request.Context(), services.PostFilter{}, 1, sitemapPosts)
	if err != nil {
		h.fail(c, err)
		return
	}

	today := time.Now().UTC().Format(time.DateOnly)
	doc := urlset{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.siteURL + "/", LastMod: today, ChangeFreq: "daily", Priority: 1.0},
			{Loc: h.siteURL + "/blog", LastMod: today, ChangeFreq: "hourly", Priority: 0.9},
		},
	}
	for i := range result.Items {
		p := &result.Items[i]
		freq, priority := freshness(p.CreatedAt)
		doc.URLs = append(doc.URLs, sitemapURL{
			Loc:        h.postURL(p),
			LastMod:    p.UpdatedAt.UTC().Format(time.DateOnly),
			ChangeFreq: freq,
			Priority:   priority,
		})
	}
	h.writeXML(c, "application/xml; charset=utf-8", doc)
}

// freshness ranks newer posts higher in the sitemap.
func freshness(created time.Time) (string, float64) {
	age := time.Since(created)
	switch {
	case age < 7*24*time.Hour:
		return "daily", 0.8
	case age < 30*24*time.Hour:
		return "weekly", 0.7
	default:
		return "weekly", 0.6
	}
}

// RSS renders the latest published posts as an RSS 2.0 channel.
func (h *FeedHandler) RSS(c *gin.Context) {
	result, err := h.posts.ListPosts(c.Request.Context(), services.PostFilter{}, 1, feedItems)
	if err != nil {
		h.fail(c, err)
		return
	}

	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         h.siteName,
			Link:          h.siteURL,
			Description:   "Latest posts from " + h.siteName,
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		},
	}
	for i := range result.Items {
		p := &result.Items[i]
		link := h.postURL(p)
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			Description: cdata{Text: lead(utils.RenderMarkdown(p.Content), leadBlocks) + fmt.Sprintf(`<p><a href="%s">Continue reading</a></p>`, link)},
			PubDate:     p.CreatedAt.UTC().Format(time.RFC1123Z),
			GUID:        link,
		}
		if p.Author != nil {
			item.Author = p.Author.Name
		}
		if p.Category != nil {
			item.Category = p.Category.Name
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}
	h.writeXML(c, "application/rss+xml; charset=utf-8", doc)
}

// lead keeps the first n top level blocks of rendered HTML.
func lead(html string, n int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	var b strings.Builder
	doc.Find("body").Children().EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= n {
			return false
		}
		if out, err := goquery.OuterHtml(s); err == nil {
			b.WriteString(out)
		}
		return true
	})
	return b.String()
}

func (h *FeedHandler) writeXML(c *gin.Context, contentType string, doc any) {
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
