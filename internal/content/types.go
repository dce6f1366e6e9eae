package content

import (
	"time"

	"aitolife/internal/directory"
)

// Content type identifiers in the CMS.
const (
	TypeTool        = "tool"
	TypeApplication = "application"
	TypePost        = "pageBlogPost"
	TypeCategory    = "category"
)

// ToolDetail is a directory entry together with its review content.
type ToolDetail struct {
	directory.Tool
	Pros         []string `json:"pros,omitempty"`
	Cons         []string `json:"cons,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	Body         RichText `json:"body,omitempty"`
}

// Application is an application-domain guide.
type Application struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Image       string   `json:"image,omitempty"`
	Body        RichText `json:"body,omitempty"`
}

// Post is a blog article.
type Post struct {
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Body          RichText   `json:"body,omitempty"`
	CoverImage    string     `json:"coverImage,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Author        string     `json:"author,omitempty"`
	Category      *Category  `json:"category,omitempty"`
}

// Category groups tools and posts.
type Category struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}
