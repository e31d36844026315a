package views

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// blockElements end a line of text.
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "div": true,
	"dl": true, "dt": true, "dd": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "hr": true, "li": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

// HTMLToText returns the visible text of an HTML fragment on a single line,
// with block boundaries turned into spaces and whitespace collapsed. Script
// and style content is dropped.
func HTMLToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteByte(' ')
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// HTMLToMarkdown converts an HTML fragment to Markdown for terminal display,
// falling back to plain text when the conversion fails.
func HTMLToMarkdown(fragment string) string {
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return HTMLToText(fragment)
	}
	return strings.TrimSpace(md)
}
