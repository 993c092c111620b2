package markup

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node converts a fragment into an html.Node tree.
func Node(f Fragment) *html.Node {
	if f.IsLiteral() {
		return &html.Node{Type: html.TextNode, Data: f.Text}
	}

	n := &html.Node{
		Type:     html.ElementNode,
		Data:     f.Element,
		DataAtom: atom.Lookup([]byte(f.Element)),
	}
	if len(f.Classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(f.Classes, " ")})
	}
	if f.Href != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "href", Val: f.Href})
	}
	if f.Target != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "target", Val: f.Target})
	}
	if f.Title != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "title", Val: f.Title})
	}
	for _, a := range f.Data {
		n.Attr = append(n.Attr, html.Attribute{Key: "data-" + a.Key, Val: a.Val})
	}
	for _, a := range f.Attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range f.Children {
		n.AppendChild(Node(c))
	}
	return n
}

// RenderHTML writes frags to w as HTML.
func RenderHTML(w io.Writer, frags ...Fragment) error {
	for _, f := range frags {
		if err := html.Render(w, Node(f)); err != nil {
			return err
		}
	}
	return nil
}

// String renders frags to an HTML string.
func String(frags ...Fragment) string {
	var b strings.Builder
	// strings.Builder never fails and Node only builds renderable trees.
	_ = RenderHTML(&b, frags...)
	return b.String()
}

// Component exposes frags as a templ component so templ pages can embed
// annotated text with @markup.Component(frags...).
func Component(frags ...Fragment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return RenderHTML(w, frags...)
	})
}
