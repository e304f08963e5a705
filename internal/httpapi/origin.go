package httpapi

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

type OriginConfig struct {
	// PublicURL is the configured public base URL of the deployment. An
	// unparseable value is dropped silently; bad config must never crash the
	// request path.
	PublicURL string
	// Production controls the fail mode when a request carries neither an
	// Origin nor a Referer header: reject in production, allow otherwise
	// (local-development convenience).
	Production bool
}

// OriginGuard rejects cross-origin mutation attempts before any token or
// session logic runs. Defense-in-depth next to same-site cookie policy, not a
// replacement for it.
type OriginGuard struct {
	cfg OriginConfig
}

func NewOriginGuard(cfg OriginConfig) *OriginGuard { return &OriginGuard{cfg: cfg} }

// Allowed checks the request's declared origin against the allow-set.
// Matching is exact: a subdomain, an alternate port or a different scheme of
// an allowed origin all fail. Malformed Referer values fail closed.
func (g *OriginGuard) Allowed(r *http.Request) bool {
	allowed := g.allowSet(r)

	if o := r.Header.Get("Origin"); o != "" {
		return allowed[o]
	}
	if ref := r.Header.Get("Referer"); ref != "" {
		u, err := url.Parse(ref)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		return allowed[u.Scheme+"://"+u.Host]
	}
	return !g.cfg.Production
}

// allowSet is rebuilt per request: the configured public origin plus a
// same-origin baseline taken from the request's own forwarded host and
// protocol.
func (g *OriginGuard) allowSet(r *http.Request) map[string]bool {
	set := make(map[string]bool, 2)

	if g.cfg.PublicURL != "" {
		if u, err := url.Parse(g.cfg.PublicURL); err == nil && u.Scheme != "" && u.Host != "" {
			set[u.Scheme+"://"+u.Host] = true
		}
	}

	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		if g.cfg.Production {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	if host != "" {
		set[proto+"://"+host] = true
	}
	return set
}

// Middleware aborts rejected requests with a generic 403; which rule failed
// is never revealed.
func (g *OriginGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.Allowed(c.Request) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
