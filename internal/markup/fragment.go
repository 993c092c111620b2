// Package markup defines the structured output of the annotator: a flat or
// nested sequence of fragments, each either literal text or an element with
// classes, an optional link and data attributes. Serialization to HTML lives
// in html.go; any other host can walk the fragments directly.
package markup

import (
	"unicode/utf8"
)

// TargetNewContext opens a link in a new browsing context.
const TargetNewContext = "_blank"

// Attr is a single name/value attribute. Data attribute names are stored
// without the "data-" prefix.
type Attr struct {
	Key string `json:"key" yaml:"key"`
	Val string `json:"val" yaml:"val"`
}

// Fragment is one piece of annotated output. A fragment with an empty
// Element is literal text and carries only Text.
type Fragment struct {
	Text     string     `json:"text,omitempty" yaml:"text,omitempty"`
	Element  string     `json:"element,omitempty" yaml:"element,omitempty"`
	Classes  []string   `json:"classes,omitempty" yaml:"classes,omitempty"`
	Href     string     `json:"href,omitempty" yaml:"href,omitempty"`
	Target   string     `json:"target,omitempty" yaml:"target,omitempty"`
	Title    string     `json:"title,omitempty" yaml:"title,omitempty"`
	Data     []Attr     `json:"data,omitempty" yaml:"data,omitempty"`
	Attrs    []Attr     `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []Fragment `json:"children,omitempty" yaml:"children,omitempty"`
}

// Literal returns a text fragment.
func Literal(text string) Fragment {
	return Fragment{Text: text}
}

// Element returns an empty element fragment.
func Element(name string, classes ...string) Fragment {
	return Fragment{Element: name, Classes: classes}
}

// IsLiteral reports whether f is plain text.
func (f Fragment) IsLiteral() bool {
	return f.Element == ""
}

// WithHref sets the link target URL.
func (f Fragment) WithHref(href string) Fragment {
	f.Href = href
	return f
}

// WithTarget sets the browsing context a link opens in.
func (f Fragment) WithTarget(target string) Fragment {
	f.Target = target
	return f
}

// WithTitle sets the title attribute.
func (f Fragment) WithTitle(title string) Fragment {
	f.Title = title
	return f
}

// WithData appends a data attribute. key is given without "data-".
func (f Fragment) WithData(key, val string) Fragment {
	f.Data = append(append([]Attr(nil), f.Data...), Attr{Key: key, Val: val})
	return f
}

// WithAttr appends a plain attribute.
func (f Fragment) WithAttr(key, val string) Fragment {
	f.Attrs = append(append([]Attr(nil), f.Attrs...), Attr{Key: key, Val: val})
	return f
}

// WithText sets the element's text content as a single literal child.
func (f Fragment) WithText(text string) Fragment {
	return f.WithChildren(Literal(text))
}

// WithChildren appends child fragments.
func (f Fragment) WithChildren(children ...Fragment) Fragment {
	f.Children = append(append([]Fragment(nil), f.Children...), children...)
	return f
}

// HasClass reports whether class is in the fragment's class list.
func (f Fragment) HasClass(class string) bool {
	for _, c := range f.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// DataValue returns the value of a data attribute.
func (f Fragment) DataValue(key string) (string, bool) {
	for _, a := range f.Data {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// InnerText concatenates the literal text of f and all its descendants.
func (f Fragment) InnerText() string {
	if f.IsLiteral() {
		return f.Text
	}
	var s string
	for _, c := range f.Children {
		s += c.InnerText()
	}
	return s
}

// TextLength counts the code points carried by the top-level literal
// fragments in frags.
func TextLength(frags []Fragment) int {
	n := 0
	for _, f := range frags {
		if f.IsLiteral() {
			n += utf8.RuneCountInString(f.Text)
		}
	}
	return n
}
