package app

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/text/collate"

	"aitolife/internal/content"
	"aitolife/internal/directory"
	"aitolife/internal/i18n"
)

// Metrics receives request and page-view observations.
type Metrics interface {
	ObservePageView(route, language string)
	ObserveRequest(method string, status int, duration time.Duration)
}

// Options wires a Server.
type Options struct {
	Source          *content.Source
	Bundle          *i18n.Bundle
	Logger          *zap.Logger
	Metrics         Metrics
	MetricsHandler  http.Handler
	DefaultLanguage i18n.Language
	Preview         bool
}

// Server renders the site pages.
type Server struct {
	source      *content.Source
	bundle      *i18n.Bundle
	logger      *zap.Logger
	metrics     Metrics
	pages       map[string]*template.Template
	defaultLang i18n.Language
	preview     bool
	mux         *http.ServeMux
	handler     http.Handler
}

// ErrNoSource is returned by NewServer when no content source is given.
var ErrNoSource = errors.New("server needs a content source")

const (
	featuredTools    = 6
	latestPosts      = 3
	homeApplications = 3
	maxSuggestions   = 3
)

// NewServer constructs an HTTP handler ready to serve site requests.
func NewServer(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, ErrNoSource
	}
	bundle := opts.Bundle
	if bundle == nil {
		loaded, err := i18n.LoadBundle()
		if err != nil {
			return nil, err
		}
		bundle = loaded
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultLang := opts.DefaultLanguage
	if defaultLang == "" {
		defaultLang = i18n.DefaultLanguage
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	srv := &Server{
		source:      opts.Source,
		bundle:      bundle,
		logger:      logger.Named("http"),
		metrics:     opts.Metrics,
		pages:       pages,
		defaultLang: defaultLang,
		preview:     opts.Preview,
		mux:         http.NewServeMux(),
	}

	srv.mux.HandleFunc("GET /{$}", srv.handleHome)
	srv.mux.HandleFunc("GET /tools", srv.handleTools)
	srv.mux.HandleFunc("GET /tools/{slug}", srv.handleTool)
	srv.mux.HandleFunc("GET /applications", srv.handleApplications)
	srv.mux.HandleFunc("GET /applications/{slug}", srv.handleApplication)
	srv.mux.HandleFunc("GET /blog", srv.handleBlog)
	srv.mux.HandleFunc("GET /blog/{slug}", srv.handlePost)
	srv.mux.HandleFunc("GET /blog/category/{slug}", srv.handleBlogCategory)
	srv.mux.HandleFunc("POST /settings/language", srv.handleLanguage)
	srv.mux.HandleFunc("POST /settings/theme", srv.handleTheme)
	srv.mux.HandleFunc("GET /healthz", srv.handleHealth)
	if opts.MetricsHandler != nil {
		srv.mux.Handle("GET /metrics", opts.MetricsHandler)
	}
	srv.mux.HandleFunc("/", srv.handleNotFound)

	srv.handler = srv.withRequestContext(srv.mux)
	return srv, nil
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type homeData struct {
	Featured     []directory.Tool
	Posts        []content.Post
	Applications []content.Application
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := visitor(r).Language()

	tools := directory.NewEngine(lang.Tag()).Apply(s.source.Tools(ctx, lang), directory.DefaultFilter())
	s.render(w, r, http.StatusOK, "home", homeData{
		Featured:     head(tools, featuredTools),
		Posts:        head(s.source.Posts(ctx, lang), latestPosts),
		Applications: head(s.source.Applications(ctx, lang), homeApplications),
	})
}

type toolsData struct {
	Filter     directory.Filter
	Tools      []directory.Tool
	Total      int
	Categories []string
	Pricing    []directory.Pricing
	Sorts      []directory.SortMode
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := visitor(r).Language()

	filter := directory.ParseFilter(r.URL.Query())
	all := s.source.Tools(ctx, lang)
	visible := directory.NewEngine(lang.Tag()).Apply(all, filter)

	s.render(w, r, http.StatusOK, "tools", toolsData{
		Filter:     filter,
		Tools:      visible,
		Total:      len(all),
		Categories: s.categoryOptions(r, all),
		Pricing:    append([]directory.Pricing{directory.PricingAll}, directory.PricingTiers...),
		Sorts:      directory.SortModes,
	})
}

// categoryOptions merges CMS categories with the labels used on tools,
// ordered for the visitor's language.
func (s *Server) categoryOptions(r *http.Request, tools []directory.Tool) []string {
	lang := visitor(r).Language()
	seen := map[string]bool{}
	var options []string
	add := func(label string) {
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		options = append(options, label)
	}
	for _, c := range s.source.Categories(r.Context(), lang) {
		add(c.Title)
	}
	for _, tool := range tools {
		for _, label := range tool.Categories {
			add(label)
		}
	}
	collate.New(lang.Tag()).SortStrings(options)
	return options
}

type toolData struct {
	Tool content.ToolDetail
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	lang := visitor(r).Language()
	tool, ok := lookupSlug(s, w, r, "/tools/", func(slug string) (content.ToolDetail, bool) {
		return s.source.ToolBySlug(r.Context(), lang, slug)
	}, s.toolSuggestions)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "tool", toolData{Tool: tool})
}

type applicationsData struct {
	Applications []content.Application
}

func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	lang := visitor(r).Language()
	s.render(w, r, http.StatusOK, "applications", applicationsData{
		Applications: s.source.Applications(r.Context(), lang),
	})
}

type applicationData struct {
	Application content.Application
}

func (s *Server) handleApplication(w http.ResponseWriter, r *http.Request) {
	lang := visitor(r).Language()
	app, ok := lookupSlug(s, w, r, "/applications/", func(slug string) (content.Application, bool) {
		return s.source.ApplicationBySlug(r.Context(), lang, slug)
	}, s.applicationSuggestions)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "application", applicationData{Application: app})
}

type blogData struct {
	Posts      []content.Post
	Categories []content.Category
	Category   *content.Category
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := visitor(r).Language()
	s.render(w, r, http.StatusOK, "blog", blogData{
		Posts:      s.source.Posts(ctx, lang),
		Categories: s.source.Categories(ctx, lang),
	})
}

func (s *Server) handleBlogCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := visitor(r).Language()
	category, ok := lookupSlug(s, w, r, "/blog/category/", func(slug string) (content.Category, bool) {
		return s.source.CategoryBySlug(ctx, lang, slug)
	}, nil)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "blog", blogData{
		Posts:      s.source.PostsByCategory(ctx, lang, category.Slug),
		Categories: s.source.Categories(ctx, lang),
		Category:   &category,
	})
}

type postData struct {
	Post content.Post
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	lang := visitor(r).Language()
	post, ok := lookupSlug(s, w, r, "/blog/", func(slug string) (content.Post, bool) {
		return s.source.PostBySlug(r.Context(), lang, slug)
	}, s.postSuggestions)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "post", postData{Post: post})
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	prefs := visitor(r)
	if !prefs.SetLanguage(r.FormValue("lang")) {
		http.Error(w, "unsupported language", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	visitor(r).ToggleTheme()
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	segment := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	pattern := suggestionPattern(segment)
	var candidates []suggestion
	if pattern != "" {
		candidates = append(candidates, s.toolSuggestions(r)...)
		candidates = append(candidates, s.applicationSuggestions(r)...)
		candidates = append(candidates, s.postSuggestions(r)...)
	}
	s.notFound(w, r, pattern, candidates)
}

// lookupSlug resolves the slug path value with find. The slug is looked up as
// the CMS spells it; only when that misses and the normalized spelling exists
// is the request redirected there. It reports false once the response has
// been written.
func lookupSlug[T any](s *Server, w http.ResponseWriter, r *http.Request, prefix string,
	find func(slug string) (T, bool), candidates func(*http.Request) []suggestion) (T, bool) {
	var zero T

	raw := r.PathValue("slug")
	slug, err := CleanSlug(raw)
	if err != nil {
		s.notFound(w, r, "", nil)
		return zero, false
	}
	if slug != raw {
		redirectSlug(w, r, prefix, slug)
		return zero, false
	}

	if item, found := find(slug); found {
		return item, true
	}
	if normalized, err := NormalizeSlug(slug); err == nil && normalized != slug {
		if _, found := find(normalized); found {
			redirectSlug(w, r, prefix, normalized)
			return zero, false
		}
	}

	var options []suggestion
	if candidates != nil {
		options = candidates(r)
	}
	s.notFound(w, r, suggestionPattern(slug), options)
	return zero, false
}

func redirectSlug(w http.ResponseWriter, r *http.Request, prefix, slug string) {
	target := prefix + url.PathEscape(slug)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

// suggestionPattern is the form of a missing slug matched against known ones.
func suggestionPattern(segment string) string {
	if normalized, err := NormalizeSlug(segment); err == nil {
		return normalized
	}
	if cleaned, err := CleanSlug(segment); err == nil {
		return cleaned
	}
	return ""
}

// returnPath picks the same-site path to go back to after a settings change.
func returnPath(r *http.Request) string {
	target := r.FormValue("return")
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

type suggestion struct {
	Title string
	Href  string
	slug  string
}

type suggestionSource []suggestion

func (s suggestionSource) String(i int) string { return s[i].slug }

func (s suggestionSource) Len() int { return len(s) }

func suggest(pattern string, candidates []suggestion) []suggestion {
	if pattern == "" || len(candidates) == 0 {
		return nil
	}
	matches := fuzzy.FindFrom(pattern, suggestionSource(candidates))
	var out []suggestion
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, candidates[m.Index])
	}
	return out
}

func (s *Server) toolSuggestions(r *http.Request) []suggestion {
	tools := s.source.Tools(r.Context(), visitor(r).Language())
	out := make([]suggestion, 0, len(tools))
	for _, t := range tools {
		out = append(out, suggestion{Title: t.Title, Href: "/tools/" + url.PathEscape(t.Slug), slug: t.Slug})
	}
	return out
}

func (s *Server) applicationSuggestions(r *http.Request) []suggestion {
	apps := s.source.Applications(r.Context(), visitor(r).Language())
	out := make([]suggestion, 0, len(apps))
	for _, a := range apps {
		out = append(out, suggestion{Title: a.Title, Href: "/applications/" + url.PathEscape(a.Slug), slug: a.Slug})
	}
	return out
}

func (s *Server) postSuggestions(r *http.Request) []suggestion {
	posts := s.source.Posts(r.Context(), visitor(r).Language())
	out := make([]suggestion, 0, len(posts))
	for _, p := range posts {
		out = append(out, suggestion{Title: p.Title, Href: "/blog/" + url.PathEscape(p.Slug), slug: p.Slug})
	}
	return out
}

type notFoundData struct {
	Path        string
	Missing     string
	Suggestions []suggestion
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, pattern string, candidates []suggestion) {
	s.render(w, r, http.StatusNotFound, "notfound", notFoundData{
		Path:        r.URL.Path,
		Missing:     pattern,
		Suggestions: suggest(pattern, candidates),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		s.logger.Error("unknown page template", zap.String("page", page))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", s.newView(r, data)); err != nil {
		s.logger.Error("render page",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("page", page),
			zap.Error(err),
		)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
