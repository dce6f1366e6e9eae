package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitolife/internal/directory"
)

const toolsResponse = `{
  "total": 2,
  "items": [
    {
      "sys": {"id": "t1", "type": "Entry", "createdAt": "2024-03-01T10:00:00Z"},
      "fields": {
        "title": "ChatGPT",
        "slug": "chatgpt",
        "description": "Conversational assistant",
        "rating": 4.8,
        "pricingType": "freemium",
        "externalUrl": "https://chat.openai.com",
        "image": {"sys": {"id": "a1", "type": "Link", "linkType": "Asset"}},
        "categories": ["Writing", {"sys": {"id": "c1", "type": "Link", "linkType": "Entry"}}],
        "content": {
          "pros": ["Fast"],
          "cons": ["Hallucinates"],
          "alternatives": ["Claude"],
          "details": {"nodeType": "document", "content": [{"nodeType": "paragraph", "content": [{"nodeType": "text", "value": "Hello", "marks": []}]}]}
        }
      }
    },
    {
      "sys": {"id": "t2", "type": "Entry"},
      "fields": {
        "title": "Mystery",
        "slug": "mystery",
        "pricingType": "lifetime",
        "content": {"nodeType": "document", "content": []}
      }
    }
  ],
  "includes": {
    "Entry": [{"sys": {"id": "c1", "type": "Entry"}, "fields": {"title": "Chatbot", "slug": "chatbot"}}],
    "Asset": [{"sys": {"id": "a1", "type": "Asset"}, "fields": {"file": {"url": "//images.ctfassets.net/chatgpt.png"}}}]
  }
}`

func decodeFixture(t *testing.T, raw string) *Collection {
	t.Helper()
	var c Collection
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return &c
}

func TestDecodeTools(t *testing.T) {
	tools := decodeTools(decodeFixture(t, toolsResponse))
	require.Len(t, tools, 2)

	chatgpt := tools[0]
	assert.Equal(t, "ChatGPT", chatgpt.Title)
	assert.Equal(t, "chatgpt", chatgpt.Slug)
	assert.Equal(t, 4.8, chatgpt.Rating)
	assert.Equal(t, directory.PricingFreemium, chatgpt.Pricing)
	assert.Equal(t, "https://images.ctfassets.net/chatgpt.png", chatgpt.Image)
	assert.Equal(t, []string{"Writing", "Chatbot"}, chatgpt.Categories)
	require.NotNil(t, chatgpt.CreatedAt)
	assert.True(t, chatgpt.CreatedAt.Equal(time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"Fast"}, chatgpt.Pros)
	assert.Equal(t, []string{"Hallucinates"}, chatgpt.Cons)
	assert.Equal(t, []string{"Claude"}, chatgpt.Alternatives)
	assert.Equal(t, "<p>Hello</p>", string(chatgpt.Body.HTML()))

	mystery := tools[1]
	assert.Equal(t, directory.PricingFree, mystery.Pricing)
	assert.Nil(t, mystery.CreatedAt)
	assert.Empty(t, mystery.Categories)
	assert.NotEmpty(t, mystery.Body)
}

func TestDecodePosts(t *testing.T) {
	raw := `{
	  "items": [{
	    "sys": {"id": "p1", "type": "Entry"},
	    "fields": {
	      "title": "Prompting 101",
	      "slug": "prompting-101",
	      "excerpt": "Basics",
	      "publishedDate": "2024-05-02",
	      "author": {"sys": {"id": "u1", "type": "Link", "linkType": "Entry"}},
	      "category": {"sys": {"id": "c1", "type": "Link", "linkType": "Entry"}}
	    }
	  }],
	  "includes": {"Entry": [
	    {"sys": {"id": "u1", "type": "Entry"}, "fields": {"name": "Lin"}},
	    {"sys": {"id": "c1", "type": "Entry"}, "fields": {"title": "Guides", "slug": "guides"}}
	  ]}
	}`
	posts := decodePosts(decodeFixture(t, raw))
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, "Prompting 101", post.Title)
	assert.Equal(t, "Lin", post.Author)
	require.NotNil(t, post.PublishedDate)
	assert.Equal(t, "2024-05-02", post.PublishedDate.Format("2006-01-02"))
	require.NotNil(t, post.Category)
	assert.Equal(t, Category{ID: "c1", Title: "Guides", Slug: "guides"}, *post.Category)
}

func TestToolDetailSurvivesJSON(t *testing.T) {
	tools := decodeTools(decodeFixture(t, toolsResponse))
	encoded, err := json.Marshal(tools[0])
	require.NoError(t, err)

	var decoded ToolDetail
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, tools[0].Body.HTML(), decoded.Body.HTML())
	assert.Equal(t, tools[0].Categories, decoded.Categories)
}
