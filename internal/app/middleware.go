package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aitolife/internal/i18n"
	"aitolife/internal/settings"
)

type contextKey int

const (
	settingsKey contextKey = iota
	requestIDKey
)

const preferenceMaxAge = 365 * 24 * time.Hour

// plainRoutes are served without resolving visitor preferences.
var plainRoutes = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// cookiePersister keeps visitor preferences in cookies.
type cookiePersister struct {
	r *http.Request
	w http.ResponseWriter
}

func (p cookiePersister) Load(key string) (string, bool) {
	c, err := p.r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (p cookiePersister) Save(key, value string) {
	http.SetCookie(p.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(preferenceMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// withRequestContext assigns a request id, resolves the visitor's
// preferences, logs the request and records page views for rendered pages.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		// Health and metrics responses never set preference cookies.
		var prefs *settings.Settings
		if !plainRoutes[r.URL.Path] {
			prefs = settings.Load(cookiePersister{r: r, w: rw}, settings.Hints{
				AcceptLanguage:  r.Header.Get("Accept-Language"),
				PrefersDark:     r.Header.Get("Sec-CH-Prefers-Color-Scheme") == "dark",
				DefaultLanguage: s.defaultLang,
			})
			ctx = context.WithValue(ctx, settingsKey, prefs)
		}
		req := r.WithContext(ctx)

		next.ServeHTTP(rw, req)

		elapsed := time.Since(start)
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", elapsed),
		}
		if prefs != nil {
			fields = append(fields, zap.String("language", string(prefs.Language())))
		}
		s.logger.Info("request", fields...)

		if s.metrics == nil {
			return
		}
		s.metrics.ObserveRequest(r.Method, rw.status, elapsed)
		if prefs != nil && r.Method == http.MethodGet && rw.status == http.StatusOK &&
			strings.HasPrefix(rw.Header().Get("Content-Type"), "text/html") {
			s.metrics.ObservePageView(routeLabel(req.Pattern), string(prefs.Language()))
		}
	})
}

// routeLabel strips the method from a mux pattern.
func routeLabel(pattern string) string {
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		return pattern[i+1:]
	}
	return pattern
}

// visitor returns the preferences resolved for r. Requests that did not pass
// through the middleware get defaults that are not persisted.
func visitor(r *http.Request) *settings.Settings {
	if prefs, ok := r.Context().Value(settingsKey).(*settings.Settings); ok {
		return prefs
	}
	return settings.Load(settings.MapPersister{}, settings.Hints{DefaultLanguage: i18n.DefaultLanguage})
}

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
