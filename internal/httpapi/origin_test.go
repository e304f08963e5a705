package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginGuard_Matrix(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		origin     string
		referer    string
		want       bool
	}{
		{"configured origin matches", true, "https://visits.example.com", "", true},
		{"same-origin baseline matches", true, "https://kiosk.internal", "", true},
		{"different port rejected", true, "https://visits.example.com:8443", "", false},
		{"subdomain rejected", true, "https://evil.visits.example.com", "", false},
		{"different scheme rejected", true, "http://visits.example.com", "", false},
		{"unrelated origin rejected", true, "https://evil.example.com", "", false},
		{"referer fallback matches", true, "", "https://visits.example.com/kiosk/out?t=abc", true},
		{"referer fallback rejected", true, "", "https://evil.example.com/kiosk", false},
		{"malformed referer fails closed", true, "", "::not-a-url::", false},
		{"relative referer fails closed", true, "", "/kiosk/out", false},
		{"no headers rejected in production", true, "", "", false},
		{"no headers allowed in development", false, "", "", true},
		{"null origin rejected", true, "null", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewOriginGuard(OriginConfig{
				PublicURL:  "https://visits.example.com",
				Production: tt.production,
			})

			r := httptest.NewRequest("POST", "https://kiosk.internal/v1/kiosk/sign-outs", nil)
			r.Host = "kiosk.internal"
			r.Header.Set("X-Forwarded-Proto", "https")
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}

			require.Equal(t, tt.want, g.Allowed(r))
		})
	}
}

func TestOriginGuard_ForwardedHost(t *testing.T) {
	g := NewOriginGuard(OriginConfig{Production: true})

	r := httptest.NewRequest("POST", "http://internal-lb/v1/kiosk/sign-outs", nil)
	r.Header.Set("X-Forwarded-Host", "visits.example.com")
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("Origin", "https://visits.example.com")
	require.True(t, g.Allowed(r))

	// Without a forwarded proto the baseline assumes https in production.
	r.Header.Del("X-Forwarded-Proto")
	require.True(t, g.Allowed(r))

	r.Header.Set("Origin", "http://visits.example.com")
	require.False(t, g.Allowed(r))
}

func TestOriginGuard_BadPublicURLIsDropped(t *testing.T) {
	g := NewOriginGuard(OriginConfig{PublicURL: "::::", Production: true})

	r := httptest.NewRequest("POST", "https://kiosk.internal/v1/kiosk/sign-outs", nil)
	r.Host = "kiosk.internal"
	r.Header.Set("X-Forwarded-Proto", "https")

	// Config is ignored, the same-origin baseline still works.
	r.Header.Set("Origin", "https://kiosk.internal")
	require.True(t, g.Allowed(r))

	r.Header.Set("Origin", "https://visits.example.com")
	require.False(t, g.Allowed(r))
}
