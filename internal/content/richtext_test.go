package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRichTextHTML(t *testing.T) {
	doc := RichText(`{"nodeType":"document","content":[
		{"nodeType":"heading-2","content":[{"nodeType":"text","value":"Why","marks":[]}]},
		{"nodeType":"paragraph","content":[
			{"nodeType":"text","value":"a <b> & ","marks":[]},
			{"nodeType":"text","value":"bold","marks":[{"type":"bold"},{"type":"italic"}]},
			{"nodeType":"hyperlink","data":{"uri":"https://example.com"},"content":[{"nodeType":"text","value":"out","marks":[]}]},
			{"nodeType":"hyperlink","data":{"uri":"/tools"},"content":[{"nodeType":"text","value":"in","marks":[]}]}
		]},
		{"nodeType":"hr","content":[]}
	]}`)

	want := `<h2>Why</h2>` +
		`<p>a &lt;b&gt; &amp; <strong><em>bold</em></strong>` +
		`<a href="https://example.com" target="_blank" rel="noopener noreferrer">out</a>` +
		`<a href="/tools">in</a></p>` +
		`<hr>`
	assert.Equal(t, want, string(doc.HTML()))
}

func TestRichTextDropsUnsafeLinks(t *testing.T) {
	doc := RichText(`{"nodeType":"document","content":[{"nodeType":"paragraph","content":[
		{"nodeType":"hyperlink","data":{"uri":"javascript:alert(1)"},"content":[{"nodeType":"text","value":"click","marks":[]}]},
		{"nodeType":"hyperlink","data":{"uri":"//evil.example"},"content":[{"nodeType":"text","value":"proto","marks":[]}]}
	]}]}`)
	assert.Equal(t, "<p>clickproto</p>", string(doc.HTML()))
}

func TestRichTextEmptyAndInvalid(t *testing.T) {
	assert.Equal(t, "", string(RichText(nil).HTML()))
	assert.Equal(t, "", string(RichText(`{not json`).HTML()))
}

func TestRichTextLineBreaks(t *testing.T) {
	doc := RichText(`{"nodeType":"document","content":[{"nodeType":"paragraph","content":[{"nodeType":"text","value":"one\ntwo","marks":[]}]}]}`)
	assert.Equal(t, "<p>one<br>two</p>", string(doc.HTML()))
}
