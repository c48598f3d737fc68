// Package rss re-syndicates merged articles as an RSS 2.0 document.
package rss

import (
	"encoding/xml"
	"io"
	"time"

	"newsiq/internal/article"
)

// RSS is the root element of an RSS feed.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel represents the channel element in an RSS feed.
type Channel struct {
	XMLName       xml.Name `xml:"channel"`
	Title         string   `xml:"title"`
	Link          string   `xml:"link"`
	Description   string   `xml:"description"`
	Language      string   `xml:"language,omitempty"`
	LastBuildDate string   `xml:"lastBuildDate,omitempty"`
	Items         []Item   `xml:"item"`
}

// Item represents an item element in an RSS feed.
type Item struct {
	XMLName     xml.Name   `xml:"item"`
	Title       string     `xml:"title"`
	Link        string     `xml:"link,omitempty"`
	Description string     `xml:"description,omitempty"`
	Author      string     `xml:"author,omitempty"`
	Category    string     `xml:"category,omitempty"`
	PubDate     string     `xml:"pubDate,omitempty"`
	GUID        GUID       `xml:"guid"`
	Enclosure   *Enclosure `xml:"enclosure,omitempty"`
}

type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type Enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

// FromArticles builds a channel whose items follow the order of articles.
func FromArticles(title, link, description string, articles []article.Article, built time.Time) RSS {
	items := make([]Item, 0, len(articles))
	for _, a := range articles {
		item := Item{
			Title:       a.Title,
			Link:        a.URL,
			Description: a.Description,
			Author:      a.Author,
			Category:    a.Category,
			PubDate:     a.PublishedAt.UTC().Format(time.RFC1123Z),
			GUID:        GUID{Value: a.ID},
		}
		if a.Image != "" {
			item.Enclosure = &Enclosure{URL: a.Image, Type: "image/jpeg"}
		}
		items = append(items, item)
	}
	return RSS{
		Version: "2.0",
		Channel: Channel{
			Title:         title,
			Link:          link,
			Description:   description,
			Language:      "en",
			LastBuildDate: built.UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}
}

// Encode writes the document with an XML declaration.
func (r RSS) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(r)
}
