package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/email"
	"scholarship-finder/internal/repository"
)

const minPasswordLength = 8

// AuthOptions agrupa los tiempos de sesion y la cuenta demo.
type AuthOptions struct {
	LoginTTL     time.Duration
	RefreshTTL   time.Duration
	CacheTTL     time.Duration
	DemoEnabled  bool
	DemoEmail    string
	DemoPassword string
}

// AuthService coordina registro, login y resolucion de sesiones.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	sessions    repository.SessionRepository
	cache       SessionCache
	limiter     LoginRateLimiter
	emailSender email.Sender
	opts        AuthOptions
	now         func() time.Time
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	cache SessionCache,
	limiter LoginRateLimiter,
	emailSender email.Sender,
	opts AuthOptions,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewMemoryLoginRateLimiter(10*time.Minute, 5)
	}
	if emailSender == nil {
		emailSender = email.NewDisabledSender("")
	}
	if opts.LoginTTL <= 0 {
		opts.LoginTTL = 30 * 24 * time.Hour
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	opts.DemoEmail = domain.NormalizeEmail(opts.DemoEmail)
	return &AuthService{
		logger:      logger,
		users:       users,
		sessions:    sessions,
		cache:       cache,
		limiter:     limiter,
		emailSender: emailSender,
		opts:        opts,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register crea el usuario y una sesion de login. Un email repetido devuelve
// ErrConflict sin crear usuario ni sesion.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.Identity, error) {
	now := s.now().UTC()
	user := domain.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Email:     domain.NormalizeEmail(input.Email),
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return domain.Identity{}, invalid(err)
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		return domain.Identity{}, invalidf("password must have at least %d characters", minPasswordLength)
	}
	if s.isDemoEmail(user.Email) {
		return domain.Identity{}, conflict("email already registered")
	}

	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return domain.Identity{}, conflict("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Identity{}, err
	}
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Identity{}, conflict("email already registered")
		}
		return domain.Identity{}, err
	}

	session, err := s.newSession(ctx, user.ID, s.opts.LoginTTL)
	if err != nil {
		return domain.Identity{}, err
	}

	s.sendWelcome(user)
	return domain.IdentityFor(user, session), nil
}

// sendWelcome no bloquea el registro; los fallos solo se registran.
func (s *AuthService) sendWelcome(user domain.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.emailSender.SendWelcome(ctx, user.Email, user.Name); err != nil {
			if errors.Is(err, email.ErrDisabled) {
				s.logger.Debug("welcome email skipped", zap.String("user_id", user.ID))
				return
			}
			s.logger.Warn("send welcome email failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}()
}

// Login valida credenciales y abre una sesion de 30 dias.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.Identity, error) {
	emailAddr = domain.NormalizeEmail(emailAddr)
	if s.isDemoLogin(emailAddr, password) {
		return s.demoLogin(ctx), nil
	}
	if emailAddr == "" || password == "" {
		return domain.Identity{}, ErrInvalidCredentials
	}
	if !s.limiter.Allow(emailAddr) {
		return domain.Identity{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, err
	}
	if user.PasswordHash == "" {
		return domain.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Identity{}, ErrInvalidCredentials
	}
	s.limiter.Reset(emailAddr)

	session, err := s.newSession(ctx, user.ID, s.opts.LoginTTL)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.IdentityFor(user, session), nil
}

func (s *AuthService) isDemoLogin(emailAddr, password string) bool {
	return s.isDemoEmail(emailAddr) && password == s.opts.DemoPassword
}

// isDemoEmail reserva el email demo mientras la cuenta demo este habilitada.
func (s *AuthService) isDemoEmail(emailAddr string) bool {
	return s.opts.DemoEnabled && s.opts.DemoEmail != "" && emailAddr == s.opts.DemoEmail
}

// demoLogin siempre devuelve una identidad admin. La cuenta demo se crea (o se
// promueve a admin) si hace falta; solo si la base no responde se usa una
// identidad estatica cuya sesion no queda persistida.
func (s *AuthService) demoLogin(ctx context.Context) domain.Identity {
	user, err := s.ensureDemoUser(ctx)
	if err != nil {
		s.logger.Warn("demo user unavailable, using static identity", zap.Error(err))
		now := s.now().UTC()
		user = domain.User{
			ID:        "demo-admin",
			Name:      "Demo Admin",
			Email:     s.opts.DemoEmail,
			Role:      domain.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	token, err := newSessionToken()
	if err != nil {
		token = uuid.NewString()
	}
	now := s.now().UTC()
	session := domain.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.opts.LoginTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Warn("demo session not persisted", zap.Error(err))
	}
	return domain.IdentityFor(user, session)
}

func (s *AuthService) ensureDemoUser(ctx context.Context) (domain.User, error) {
	now := s.now().UTC()
	user, err := s.users.GetByEmail(ctx, s.opts.DemoEmail)
	switch {
	case err == nil:
		if user.Role == domain.RoleAdmin {
			return user, nil
		}
		user.Role = domain.RoleAdmin
		user.UpdatedAt = now
		if err := s.users.Update(ctx, user); err != nil {
			return domain.User{}, err
		}
		return user, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user = domain.User{
		ID:           uuid.NewString(),
		Name:         "Demo Admin",
		Email:        s.opts.DemoEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Otro login demo concurrente la creo primero.
		if errors.Is(err, repository.ErrDuplicate) {
			return s.users.GetByEmail(ctx, s.opts.DemoEmail)
		}
		return domain.User{}, err
	}
	s.logger.Info("demo admin created", zap.String("user_id", user.ID))
	return user, nil
}

// Logout borra la sesion y su entrada de cache. Es idempotente.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	s.forget(token)
	return s.sessions.Delete(ctx, token)
}

// ResolveSession devuelve la identidad de un token vigente. Cualquier error de
// acceso a datos se trata como no autenticado.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, ErrUnauthenticated
	}
	now := s.now().UTC()

	if s.cache != nil {
		identity, ok, err := s.cache.Get(token)
		if err != nil {
			s.logger.Warn("session cache get failed", zap.Error(err))
		} else if ok && identity.SessionExpiresAt.After(now) {
			return identity, nil
		}
	}

	identity, err := s.sessions.GetIdentity(ctx, token, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if err := s.sessions.DeleteExpiredToken(ctx, token, now); err != nil {
				s.logger.Debug("purge expired session failed", zap.Error(err))
			}
			return domain.Identity{}, ErrUnauthenticated
		}
		s.logger.Error("resolve session failed", zap.Error(err))
		return domain.Identity{}, ErrUnauthenticated
	}

	s.remember(identity, now)
	return identity, nil
}

// ResolveHandle resuelve la sesion detras de un bearer token. El handle es un
// hash del token y no sirve como cookie.
func (s *AuthService) ResolveHandle(ctx context.Context, handle string) (domain.Identity, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return domain.Identity{}, ErrUnauthenticated
	}
	identity, err := s.sessions.GetIdentityByHandle(ctx, handle, s.now().UTC())
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error("resolve session handle failed", zap.Error(err))
		}
		return domain.Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// RefreshSession mueve la expiracion a now + RefreshTTL. El token no cambia.
func (s *AuthService) RefreshSession(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	if !identity.Authenticated() || identity.SessionToken == "" {
		return domain.Identity{}, ErrUnauthenticated
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.opts.RefreshTTL)
	if err := s.sessions.Extend(ctx, identity.SessionToken, expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.forget(identity.SessionToken)
			return domain.Identity{}, ErrUnauthenticated
		}
		return domain.Identity{}, err
	}
	identity.SessionExpiresAt = expiresAt
	s.remember(identity, now)
	return identity, nil
}

func (s *AuthService) RefreshTTL() time.Duration {
	return s.opts.RefreshTTL
}

func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (domain.User, error) {
	if !identity.Authenticated() {
		return domain.User{}, ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return domain.User{}, translate(err, "user")
	}
	return user, nil
}

// UpdateProfile aplica un patch parcial al usuario de la sesion.
func (s *AuthService) UpdateProfile(ctx context.Context, identity domain.Identity, patch domain.ProfilePatch) (domain.User, error) {
	if !identity.Authenticated() {
		return domain.User{}, ErrUnauthenticated
	}
	if patch.IsEmpty() {
		return domain.User{}, invalidf("nothing to update")
	}
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return domain.User{}, translate(err, "user")
	}
	previousEmail := user.Email
	patch.Apply(&user)
	if err := user.Validate(); err != nil {
		return domain.User{}, invalid(err)
	}
	if user.Email != previousEmail && s.isDemoEmail(user.Email) {
		return domain.User{}, conflict("email already registered")
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, conflict("email already registered")
		}
		return domain.User{}, translate(err, "user")
	}
	s.forget(identity.SessionToken)
	return user, nil
}

func (s *AuthService) newSession(ctx context.Context, userID string, ttl time.Duration) (domain.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return domain.Session{}, err
	}
	now := s.now().UTC()
	session := domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// remember cachea la identidad sin superar la vida de la sesion.
func (s *AuthService) remember(identity domain.Identity, now time.Time) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	ttl := s.opts.CacheTTL
	if left := identity.SessionExpiresAt.Sub(now); left < ttl {
		ttl = left
	}
	if err := s.cache.Set(identity, ttl); err != nil {
		s.logger.Warn("session cache set failed", zap.Error(err))
	}
}

func (s *AuthService) forget(token string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Delete(token); err != nil {
		s.logger.Warn("session cache delete failed", zap.Error(err))
	}
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
