package app

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"aitolife/internal/i18n"
	"aitolife/internal/settings"
)

// templateFS contains the HTML templates bundled with the binary.
//
//go:embed templates/*
var templateFS embed.FS

var pageNames = []string{
	"home",
	"tools",
	"tool",
	"applications",
	"application",
	"blog",
	"post",
	"notfound",
}

var templateFuncs = template.FuncMap{
	"truncate":  truncate,
	"stars":     stars,
	"slugTitle": SlugTitle,
	"rating": func(r float64) string {
		return fmt.Sprintf("%.1f", r)
	},
}

// parsePages builds one template set per page on top of the shared layout.
func parsePages() (map[string]*template.Template, error) {
	base, err := template.New("layout.gohtml").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.gohtml")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name+".gohtml"); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = clone
	}
	return pages, nil
}

// view is the value every page template executes against.
type view struct {
	Lang    i18n.Language
	Theme   settings.Theme
	Path    string
	Preview bool
	Data    any

	bundle *i18n.Bundle
}

func (s *Server) newView(r *http.Request, data any) view {
	prefs := visitor(r)
	path := r.URL.Path
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	return view{
		Lang:    prefs.Language(),
		Theme:   prefs.Theme(),
		Path:    path,
		Preview: s.preview,
		Data:    data,
		bundle:  s.bundle,
	}
}

// T translates key. Extra arguments are placeholder name/value pairs.
func (v view) T(key string, pairs ...any) string {
	var params map[string]string
	if len(pairs) > 1 {
		params = make(map[string]string, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			params[fmt.Sprint(pairs[i])] = fmt.Sprint(pairs[i+1])
		}
	}
	return v.bundle.T(v.Lang, key, params)
}

// Date formats t for the page language.
func (v view) Date(t *time.Time) string {
	return formatDate(v.Lang, t)
}

// OtherLang is the language offered by the switcher.
func (v view) OtherLang() i18n.Language {
	if v.Lang == i18n.English {
		return i18n.Chinese
	}
	return i18n.English
}

// Year is the current year for the footer.
func (v view) Year() int {
	return time.Now().Year()
}
