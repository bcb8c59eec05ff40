package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"scholarship-finder/internal/domain"
)

// JWTService emite y valida bearer tokens que envuelven una sesion. El token
// lleva el handle de la sesion (hash), nunca el valor de la cookie. Revocar la
// sesion (logout) invalida el token aunque no haya expirado.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Claims struct {
	UserID        string `json:"uid"`
	Role          string `json:"role"`
	SessionHandle string `json:"sid"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid  = errors.New("jwt invalid")
	ErrJWTExpired  = errors.New("jwt expired")
	ErrJWTDisabled = errors.New("jwt disabled")
)

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "scholarship-finder",
		now:    time.Now,
	}
}

// Enabled es falso cuando no hay JWT_SECRET configurado.
func (s *JWTService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue firma un token para la sesion de la identidad. El TTL nunca supera
// lo que le queda a la sesion.
func (s *JWTService) Issue(identity domain.Identity) (AccessToken, error) {
	if !s.Enabled() {
		return AccessToken{}, ErrJWTDisabled
	}
	if !identity.Authenticated() || strings.TrimSpace(identity.SessionToken) == "" {
		return AccessToken{}, ErrJWTInvalid
	}
	now := s.now().UTC()
	ttl := s.ttl
	if left := identity.SessionExpiresAt.Sub(now); left < ttl {
		ttl = left
	}
	if ttl < time.Second {
		return AccessToken{}, ErrJWTExpired
	}

	claims := Claims{
		UserID:        identity.UserID,
		Role:          identity.Role,
		SessionHandle: domain.SessionHandle(identity.SessionToken),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

func (s *JWTService) Parse(tokenString string) (Claims, error) {
	if !s.Enabled() {
		return Claims{}, ErrJWTDisabled
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.SessionHandle) == "" {
		return false
	}
	return claims.Subject == claims.UserID
}
