package services

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	nethtml "golang.org/x/net/html"
)

// Personalize substitutes the recipient placeholders in text
func Personalize(text string, r models.Recipient) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return strings.NewReplacer(
		"{{firstName}}", r.FirstName,
		"{{lastName}}", r.LastName,
		"{{name}}", r.Name,
	).Replace(text)
}

// PlainText flattens an HTML body into readable text; block elements become line breaks
func PlainText(body string) string {
	z := nethtml.NewTokenizer(strings.NewReader(body))
	var b strings.Builder
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			if z.Err() == io.EOF {
				return collapseBlankLines(b.String())
			}
			return strings.TrimSpace(b.String())
		case nethtml.TextToken:
			b.Write(z.Text())
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "p", "div", "li", "h1", "h2", "h3", "h4", "tr":
				b.WriteByte('\n')
			}
		case nethtml.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p", "div", "h1", "h2", "h3", "h4":
				b.WriteByte('\n')
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, l)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// emailSubject falls back to the title when no subject was written
func emailSubject(b *models.Broadcast) string {
	if b.Subject != "" {
		return b.Subject
	}
	return b.Title
}

// renderEmailHTML appends the call-to-action and video links to the body
func renderEmailHTML(b *models.Broadcast, videoURL string, r models.Recipient) string {
	var sb strings.Builder
	sb.WriteString(Personalize(b.BodyHTML, r))
	if videoURL != "" {
		fmt.Fprintf(&sb, `<p><a href="%s">Watch the video</a></p>`, html.EscapeString(videoURL))
	}
	if b.LinkURL != "" {
		text := b.LinkText
		if text == "" {
			text = b.LinkURL
		}
		fmt.Fprintf(&sb, `<p><a href="%s">%s</a></p>`, html.EscapeString(b.LinkURL), html.EscapeString(text))
	}
	return sb.String()
}

// renderSlackText builds the direct-message text for a recipient
func renderSlackText(b *models.Broadcast, videoURL string, r models.Recipient) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*", b.Title)
	if body := PlainText(Personalize(b.BodyHTML, r)); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(body)
	}
	if videoURL != "" {
		fmt.Fprintf(&sb, "\n\n<%s|Watch the video>", videoURL)
	}
	if b.LinkURL != "" {
		text := b.LinkText
		if text == "" {
			text = b.LinkURL
		}
		fmt.Fprintf(&sb, "\n\n<%s|%s>", b.LinkURL, text)
	}
	return sb.String()
}
