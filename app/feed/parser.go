package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) ([]Post, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	posts := make([]Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		posts = append(posts, p.normalizeItem(item))
	}

	return posts, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Post {
	guid := cmp.Or(item.GUID, item.Link)
	id, numericID := extractID(guid)

	post := Post{
		ID:         id,
		NumericID:  numericID,
		Title:      item.Title,
		RawExcerpt: item.Description,
		Author:     p.extractAuthor(item),
		Link:       item.Link,
	}

	post.Excerpt, post.ThumbnailURL = cleanPreview(item.Description)

	if item.PublishedParsed != nil {
		post.PublishedAt = item.PublishedParsed
	}

	return post
}

// extractID pulls the topic identifier out of a Discourse entry GUID, which
// ends in "-<topic id>". Entries whose GUID carries no numeric suffix keep the
// whole GUID as their identifier and report a zero numeric form.
func extractID(guid string) (string, int64) {
	trimmed := strings.TrimSuffix(guid, "/")
	idx := strings.LastIndex(trimmed, "-")
	if idx >= 0 && idx < len(trimmed)-1 {
		suffix := trimmed[idx+1:]
		if n, err := strconv.ParseInt(suffix, 10, 64); err == nil {
			return suffix, n
		}
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return trimmed, n
	}
	return guid, 0
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		if name := strings.TrimSpace(item.Authors[0].Name); name != "" {
			return name
		}
	}
	if item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return ""
}

// cleanPreview strips markup from a preview fragment and picks out the first
// embedded image. Unparseable fragments fall back to the raw text.
func cleanPreview(preview string) (string, string) {
	if preview == "" {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(preview))
	if err != nil {
		return strings.Join(strings.Fields(preview), " "), ""
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")

	thumbnail := ""
	if src, ok := doc.Find("img").First().Attr("src"); ok {
		thumbnail = src
	}

	return text, thumbnail
}
