package pipeline

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextExtractor derives a tag-free rendition of markup.
type TextExtractor interface {
	ExtractText(markup string) (string, error)
}

// GoqueryExtractor extracts text from the parsed document body. It decodes
// entities, skips non-rendered elements, breaks lines at block elements,
// bullets list items and renders links as "text [href]".
type GoqueryExtractor struct{}

// ExtractText returns the plain-text rendition of markup.
func (GoqueryExtractor) ExtractText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}

	w := &textWriter{}
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			w.children(n)
		}
	})
	return w.String(), nil
}

// skippedElements never contribute text.
var skippedElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Title:    true,
	atom.Style:    true,
	atom.Script:   true,
	atom.Noscript: true,
	atom.Template: true,
}

// paragraphElements are separated from their neighbours by a blank line.
var paragraphElements = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Table: true,
	atom.Blockquote: true, atom.Pre: true, atom.Ul: true, atom.Ol: true,
}

// lineElements start on a new line.
var lineElements = map[atom.Atom]bool{
	atom.Div: true, atom.Li: true, atom.Tr: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Hr: true,
	atom.Center: true, atom.Address: true, atom.Dt: true, atom.Dd: true,
}

// textWriter accumulates text with collapsed whitespace and deferred line
// breaks, so no leading or doubled blank lines are emitted.
type textWriter struct {
	sb      strings.Builder
	breaks  int  // newlines owed before the next text
	space   bool // a space is owed before the next text on this line
	content bool // the current line has text
	pre     int  // depth of <pre> elements
}

func (w *textWriter) String() string {
	return strings.TrimSpace(w.sb.String())
}

func (w *textWriter) lineBreak(n int) {
	if n > w.breaks {
		w.breaks = n
	}
	w.space = false
}

func (w *textWriter) flushBreaks() {
	if w.breaks > 0 && w.sb.Len() > 0 {
		w.sb.WriteString(strings.Repeat("\n", w.breaks))
		w.content = false
	}
	w.breaks = 0
}

func (w *textWriter) text(s string) {
	if w.pre > 0 {
		w.flushBreaks()
		w.sb.WriteString(s)
		w.content = !strings.HasSuffix(s, "\n")
		return
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			w.space = true
			continue
		}
		w.flushBreaks()
		if w.space && w.content {
			w.sb.WriteByte(' ')
		}
		w.space = false
		w.sb.WriteRune(r)
		w.content = true
	}
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *textWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}

	if skippedElements[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.Br:
		if w.sb.Len() > 0 {
			w.flushBreaks()
			w.sb.WriteByte('\n')
			w.content = false
			w.space = false
		}
		return
	case atom.Img:
		if alt := attr(n, "alt"); alt != "" {
			w.text(" " + alt + " ")
		}
		return
	case atom.A:
		start := w.sb.Len()
		w.children(n)
		label := strings.TrimSpace(w.sb.String()[start:])
		href := strings.TrimSpace(attr(n, "href"))
		if href != "" && !strings.HasPrefix(href, "#") && href != label {
			w.text(" [" + href + "]")
		}
		return
	case atom.Td, atom.Th:
		w.children(n)
		w.space = true
		return
	case atom.Pre:
		w.lineBreak(2)
		w.pre++
		w.children(n)
		w.pre--
		w.lineBreak(2)
		return
	}

	switch {
	case paragraphElements[n.DataAtom]:
		w.lineBreak(2)
		w.children(n)
		w.lineBreak(2)
	case n.DataAtom == atom.Li:
		w.lineBreak(1)
		w.text("* ")
		w.children(n)
		w.lineBreak(1)
	case lineElements[n.DataAtom]:
		w.lineBreak(1)
		w.children(n)
		w.lineBreak(1)
	default:
		w.children(n)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
