package notifier

import (
	"fmt"
	"html"
	"strings"

	"delphiwatch/app/feed"
)

const excerptLimit = 1800

// Render builds the Telegram HTML message for a matched post: linked title,
// trimmed excerpt, author profile link and the matched pattern.
func Render(post feed.Post, matched, forumURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Post found with <b>%s</b>\n\n", html.EscapeString(matched))

	title := html.EscapeString(post.Title)
	if post.Link != "" {
		fmt.Fprintf(&b, "<b><a href=\"%s\">%s</a></b>\n", html.EscapeString(post.Link), title)
	} else {
		fmt.Fprintf(&b, "<b>%s</b>\n", title)
	}

	if excerpt := truncate(post.Excerpt, excerptLimit); excerpt != "" {
		b.WriteString(html.EscapeString(excerpt))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if post.Author != "" {
		fmt.Fprintf(&b, "by <a href=\"%s\">%s</a> · ",
			html.EscapeString(AuthorProfileURL(forumURL, post.Author)),
			html.EscapeString(post.Author))
	}
	fmt.Fprintf(&b, "post %s", html.EscapeString(post.ID))

	return b.String()
}

// AuthorProfileURL builds the forum profile link the way the forum does:
// spaces removed from the display name.
func AuthorProfileURL(forumURL, author string) string {
	username := strings.ReplaceAll(author, " ", "")
	return fmt.Sprintf("%s/u/%s/summary", strings.TrimSuffix(forumURL, "/"), username)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
