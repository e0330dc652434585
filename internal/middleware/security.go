package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// Sources the dashboard page needs: Leaflet and Chart.js from public CDNs
// and OpenStreetMap tiles for the marker map.
var (
	cdnSources  = "https://unpkg.com https://cdn.jsdelivr.net"
	tileSources = "https://*.tile.openstreetmap.org"
)

// SecureHeaders sets browser hardening headers on every response
type SecureHeaders struct {
	// HSTSMaxAge is sent in seconds, and only over TLS
	HSTSMaxAge int
	// FrameOptions defaults to DENY; the dashboard is never embedded
	FrameOptions string
	// DevMode relaxes the content security policy for local front end work
	DevMode bool
}

// DefaultSecureHeaders returns the production settings
func DefaultSecureHeaders() *SecureHeaders {
	return &SecureHeaders{
		HSTSMaxAge:   63072000,
		FrameOptions: "DENY",
	}
}

// Handler returns the middleware handler
func (sh *SecureHeaders) Handler(next http.Handler) http.Handler {
	static := map[string]string{
		"Content-Security-Policy": sh.contentSecurityPolicy(),
		"X-Content-Type-Options":  "nosniff",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
	}
	if sh.FrameOptions != "" {
		static["X-Frame-Options"] = sh.FrameOptions
	}
	if !sh.DevMode {
		static["Permissions-Policy"] = "camera=(), microphone=(), geolocation=(), payment=(), usb=()"
	}
	hsts := ""
	if sh.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(sh.HSTSMaxAge) + "; includeSubDomains"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range static {
			h.Set(k, v)
		}
		if hsts != "" && r.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}

func (sh *SecureHeaders) contentSecurityPolicy() string {
	if sh.DevMode {
		return "default-src 'self'; script-src 'self' 'unsafe-inline' *; style-src 'self' 'unsafe-inline' *; img-src * data: blob:; connect-src *"
	}
	return strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' " + cdnSources,
		"style-src 'self' 'unsafe-inline' " + cdnSources,
		"img-src 'self' data: blob: " + tileSources,
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")
}
