package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/service"
)

const identityKey = "identity"

type pathClass int

const (
	classPublic pathClass = iota
	classProtected
	classAdmin
)

// GateConfig lista los prefijos protegidos y los reservados a admin.
type GateConfig struct {
	ProtectedPrefixes []string
	AdminPrefixes     []string
	Cookies           CookieConfig
}

// Gate resuelve la sesion de cada request, aplica las reglas de acceso por
// prefijo y extiende la sesion de los requests que pasan.
type Gate struct {
	logger *zap.Logger
	auth   *service.AuthService
	jwt    *service.JWTService
	cfg    GateConfig
}

func NewGate(logger *zap.Logger, auth *service.AuthService, jwt *service.JWTService, cfg GateConfig) *Gate {
	return &Gate{logger: logger, auth: auth, jwt: jwt, cfg: cfg}
}

func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		class := g.classify(c.Request.URL.Path)
		identity, fromCookie := g.resolve(c)

		if !identity.Authenticated() {
			if class != classPublic {
				g.deny(c, http.StatusUnauthorized, "authentication required", loginRedirect(c))
				return
			}
			c.Next()
			return
		}

		if class == classAdmin && !identity.IsAdmin() {
			g.deny(c, http.StatusForbidden, "admin role required", "/")
			return
		}

		if fromCookie {
			identity = g.refresh(c, identity)
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func (g *Gate) classify(path string) pathClass {
	if matchesPrefix(path, g.cfg.AdminPrefixes) {
		return classAdmin
	}
	if matchesPrefix(path, g.cfg.ProtectedPrefixes) {
		return classProtected
	}
	return classPublic
}

// matchesPrefix compara por segmentos: /api/admin cubre /api/admin/x pero no /api/administrator.
func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// resolve busca primero la cookie de sesion y despues un bearer token.
func (g *Gate) resolve(c *gin.Context) (domain.Identity, bool) {
	ctx := c.Request.Context()
	if token := sessionToken(c); token != "" {
		identity, err := g.auth.ResolveSession(ctx, token)
		if err == nil {
			return identity, true
		}
		g.cfg.Cookies.clearSession(c)
	}

	bearer := bearerToken(c)
	if bearer == "" || !g.jwt.Enabled() {
		return domain.Identity{}, false
	}
	claims, err := g.jwt.Parse(bearer)
	if err != nil {
		g.logger.Debug("bearer token rejected", zap.Error(err))
		return domain.Identity{}, false
	}
	identity, err := g.auth.ResolveHandle(ctx, claims.SessionHandle)
	if err != nil || identity.UserID != claims.UserID {
		return domain.Identity{}, false
	}
	return identity, false
}

// refresh extiende la sesion y reemite la cookie. Cualquier falla, incluido
// un panic, deja pasar el request sin cambios.
func (g *Gate) refresh(c *gin.Context, identity domain.Identity) (out domain.Identity) {
	out = identity
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("session refresh panicked", zap.Any("panic", r))
			out = identity
		}
	}()

	refreshed, err := g.auth.RefreshSession(c.Request.Context(), identity)
	if err != nil {
		if !errors.Is(err, service.ErrUnauthenticated) {
			g.logger.Warn("session refresh failed", zap.Error(err))
		}
		return identity
	}
	g.cfg.Cookies.setSession(c, refreshed.SessionToken, g.auth.RefreshTTL(), http.SameSiteStrictMode)
	return refreshed
}

// deny responde 401/403 en JSON a clientes de API y redirige a navegadores.
func (g *Gate) deny(c *gin.Context, status int, msg, location string) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, location)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func wantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func loginRedirect(c *gin.Context) string {
	return fmt.Sprintf("/login?redirect=%s", url.QueryEscape(c.Request.URL.RequestURI()))
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("bearer "):])
}

// IdentityFrom obtiene la identidad resuelta por el gate.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok && identity.Authenticated()
}

// requireIdentity corta con 401 cuando no hay sesion.
func requireIdentity(c *gin.Context) (domain.Identity, bool) {
	identity, ok := IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return domain.Identity{}, false
	}
	return identity, true
}

// requireAdmin repite el chequeo de rol en el grupo admin, por si el gate se
// configura sin ese prefijo.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := requireIdentity(c)
		if !ok {
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}
