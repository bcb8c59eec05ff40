package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid es verdadero mientras la expiracion siga en el futuro.
func (s Session) Valid(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// SessionHandle identifica una sesion sin revelar su token. Es lo que viaja
// en los bearer tokens.
func SessionHandle(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Identity es el usuario resuelto a partir de una sesion. Se pasa de forma
// explicita a cada handler y servicio.
type Identity struct {
	UserID           string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Image            string    `json:"image,omitempty"`
	SessionToken     string    `json:"-"`
	SessionExpiresAt time.Time `json:"session_expires_at"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

func IdentityFor(user User, session Session) Identity {
	return Identity{
		UserID:           user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		Image:            user.Image,
		SessionToken:     session.Token,
		SessionExpiresAt: session.ExpiresAt,
	}
}
