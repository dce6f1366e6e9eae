package content

import (
	"encoding/json"
	"html"
	"html/template"
	"net/url"
	"strings"
)

// RichText is a CMS rich-text document kept in its JSON form.
type RichText []byte

func (r RichText) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RichText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}
	*r = append((*r)[:0], data...)
	return nil
}

type richNode struct {
	NodeType string     `json:"nodeType"`
	Value    string     `json:"value"`
	Marks    []richMark `json:"marks"`
	Content  []richNode `json:"content"`
	Data     struct {
		URI string `json:"uri"`
	} `json:"data"`
}

type richMark struct {
	Type string `json:"type"`
}

func isRichText(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var probe struct {
		NodeType string `json:"nodeType"`
	}
	return json.Unmarshal(raw, &probe) == nil && probe.NodeType == "document"
}

// HTML renders the document. Text is escaped and link targets are limited to
// http(s), mailto and site-relative URLs. Unknown nodes render their children.
func (r RichText) HTML() template.HTML {
	if len(r) == 0 {
		return ""
	}
	var doc richNode
	if err := json.Unmarshal(r, &doc); err != nil {
		return ""
	}
	var b strings.Builder
	renderNodes(&b, doc.Content)
	return template.HTML(b.String())
}

var blockTags = map[string]string{
	"paragraph":      "p",
	"heading-1":      "h1",
	"heading-2":      "h2",
	"heading-3":      "h3",
	"heading-4":      "h4",
	"heading-5":      "h5",
	"heading-6":      "h6",
	"unordered-list": "ul",
	"ordered-list":   "ol",
	"list-item":      "li",
	"blockquote":     "blockquote",
}

var markTags = map[string]string{
	"bold":      "strong",
	"italic":    "em",
	"underline": "u",
	"code":      "code",
}

func renderNodes(b *strings.Builder, nodes []richNode) {
	for _, node := range nodes {
		renderNode(b, node)
	}
}

func renderNode(b *strings.Builder, node richNode) {
	switch node.NodeType {
	case "text":
		renderText(b, node)
	case "hr":
		b.WriteString("<hr>")
	case "hyperlink":
		href, ok := safeHref(node.Data.URI)
		if !ok {
			renderNodes(b, node.Content)
			return
		}
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(href))
		if isExternal(href) {
			b.WriteString(`" target="_blank" rel="noopener noreferrer`)
		}
		b.WriteString(`">`)
		renderNodes(b, node.Content)
		b.WriteString("</a>")
	default:
		tag, ok := blockTags[node.NodeType]
		if !ok {
			renderNodes(b, node.Content)
			return
		}
		b.WriteString("<" + tag + ">")
		renderNodes(b, node.Content)
		b.WriteString("</" + tag + ">")
	}
}

func renderText(b *strings.Builder, node richNode) {
	var opening, closing []string
	for _, mark := range node.Marks {
		if tag, ok := markTags[mark.Type]; ok {
			opening = append(opening, "<"+tag+">")
			closing = append([]string{"</" + tag + ">"}, closing...)
		}
	}
	b.WriteString(strings.Join(opening, ""))
	b.WriteString(strings.ReplaceAll(html.EscapeString(node.Value), "\n", "<br>"))
	b.WriteString(strings.Join(closing, ""))
}

func safeHref(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return trimmed, true
	case "":
		if strings.HasPrefix(trimmed, "/") && !strings.HasPrefix(trimmed, "//") {
			return trimmed, true
		}
	}
	return "", false
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}
