package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/hearback/hearback/internal/clock"
	"github.com/hearback/hearback/internal/identity/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16

	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour

	minPasswordLength = 8
)

type Service struct {
	log         *zap.Logger
	repo        domain.Repository
	sessionRepo domain.SessionRepository
	genID       *snowflake.Node
	clock       clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, sessionRepo domain.SessionRepository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:         log.Named("identity.service"),
		repo:        repo,
		sessionRepo: sessionRepo,
		genID:       genID,
		clock:       clk,
	}
}

// Resolve binds an authentication event to a user record. The order of
// preference is: the explicit existing id, the currently signed-in identity
// when its email matches, any user owning the normalized email, and finally
// a freshly created record. Merging by email is deliberate: an invitation
// accepted anonymously can later be claimed by a password sign-up.
func (s *Service) Resolve(ctx context.Context, profile domain.Profile, existingUserID, currentUserID *snowflake.ID) (snowflake.ID, error) {
	if existingUserID != nil {
		return *existingUserID, nil
	}

	email := normalizeEmail(profile.Email)
	if email != "" {
		if currentUserID != nil {
			current, err := s.repo.FindByID(ctx, *currentUserID)
			if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				return 0, err
			}
			if current != nil && current.Email != nil && normalizeEmail(*current.Email) == email {
				return current.ID, nil
			}
		}

		existing, err := s.repo.FindByNormalizedEmail(ctx, email)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return 0, err
		}
		if existing != nil {
			return existing.ID, nil
		}
	}

	user := &domain.User{
		ID:          s.genID.Generate(),
		ExternalID:  uuid.NewString(),
		DisplayName: strings.TrimSpace(profile.Name),
		IsAnonymous: email == "",
	}
	if email != "" {
		user.Email = &email
	}
	if user.DisplayName == "" && email != "" {
		user.DisplayName = defaultDisplayName(email)
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (s *Service) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	password := strings.TrimSpace(req.Password)
	if len(password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	userID, err := s.Resolve(ctx, domain.Profile{Email: email, Name: req.Name}, nil, req.CurrentUserID)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash != nil {
		return nil, domain.ErrUserExists
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fields := map[string]any{
		"password_hash": hashed,
		"email":         email,
		"is_anonymous":  false,
		"updated_at":    now,
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		fields["display_name"] = name
	}
	if err := s.repo.UpdateFields(ctx, user.ID, fields); err != nil {
		return nil, err
	}

	user, err = s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user, req.UserAgent, req.IPAddress)
}

func (s *Service) SignInAnonymous(ctx context.Context, req domain.AnonymousRequest) (*domain.LoginResult, error) {
	userID, err := s.Resolve(ctx, domain.Profile{}, nil, nil)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user, req.UserAgent, req.IPAddress)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByNormalizedEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil || !verifyPassword(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, user, req.UserAgent, req.IPAddress)
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}

	return s.sessionRepo.RevokeSession(ctx, session.ID, s.clock.Now())
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessionRepo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}

	now := s.clock.Now()
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	if err := s.sessionRepo.UpdateLastSeen(ctx, session.ID, now); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *Service) SetPassword(ctx context.Context, userID snowflake.ID, password string) error {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return err
	}

	hashed, err := hashPassword(strings.TrimSpace(password))
	if err != nil {
		return err
	}

	return s.repo.UpdateFields(ctx, userID, map[string]any{
		"password_hash": hashed,
		"is_anonymous":  false,
		"updated_at":    s.clock.Now(),
	})
}

func (s *Service) GetUser(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) openSession(ctx context.Context, user *domain.User, userAgent, ipAddress string) (*domain.LoginResult, error) {
	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(userAgent),
		IPAddress:        strings.TrimSpace(ipAddress),
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      domain.ViewOf(user),
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
		SessionID: session.ID,
	}, nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func defaultDisplayName(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", argonMemory, argonTime, argonThreads, saltB64, hashB64), nil
}

func verifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	var memory uint32
	var timeCost uint32
	var threads uint8
	{
		params := strings.Split(parts[3], ",")
		if len(params) != 3 {
			return false
		}

		m, ok := strings.CutPrefix(params[0], "m=")
		if !ok {
			return false
		}
		t, ok := strings.CutPrefix(params[1], "t=")
		if !ok {
			return false
		}
		p, ok := strings.CutPrefix(params[2], "p=")
		if !ok {
			return false
		}

		m64, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			return false
		}
		t64, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			return false
		}
		p64, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return false
		}

		memory = uint32(m64)
		timeCost = uint32(t64)
		threads = uint8(p64)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	check := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, check) == 1
}
