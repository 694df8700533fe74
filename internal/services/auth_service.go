package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repositories"
	"portfolio/internal/security"
	"portfolio/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for new password hashes.
const BcryptCost = 10

// maxBcryptBytes is the longest input bcrypt uses. Longer passwords are
// truncated, matching hashes produced by other bcrypt implementations.
const maxBcryptBytes = 72

func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptBytes {
		b = b[:maxBcryptBytes]
	}
	return b
}

// AuthService handles member registration, login and session tokens.
type AuthService struct {
	memberRepo repositories.MemberRepository
	revoked    *security.RevocationList
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which a session token is valid
}

// NewAuthService creates a new AuthService. revoked may be nil, in which
// case tokens cannot be revoked before they expire.
func NewAuthService(memberRepo repositories.MemberRepository, jwtSecret string, tokenTTL time.Duration, revoked *security.RevocationList) *AuthService {
	return &AuthService{
		memberRepo: memberRepo,
		revoked:    revoked,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
	}
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Member    *models.Member
	Token     string
	ExpiresAt time.Time
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterMember hashes the password and stores a new member.
func (s *AuthService) RegisterMember(in SignupInput) (*models.Member, error) {
	email := NormalizeEmail(in.Email)

	if _, err := s.memberRepo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(bcryptInput(in.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &models.Member{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  string(hashedPassword),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.memberRepo.Create(member); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register member: %w", err)
	}
	return member, nil
}

// LoginMember verifies credentials and issues a session token. Records that
// still hold a plaintext password are upgraded to a bcrypt hash on the first
// successful match. Unknown emails and wrong passwords are not distinguished.
func (s *AuthService) LoginMember(email, password string) (*LoginResult, error) {
	member, err := s.memberRepo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	if member.HasHashedPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(member.Password), bcryptInput(password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	} else {
		if subtle.ConstantTimeCompare([]byte(member.Password), []byte(password)) != 1 {
			return nil, ErrInvalidCredentials
		}
		if err := s.upgradePassword(member, password); err != nil {
			return nil, err
		}
	}

	token, expiresAt, err := s.IssueToken(member)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Member: member, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) upgradePassword(member *models.Member, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword(bcryptInput(password), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.memberRepo.UpdatePassword(member.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to upgrade legacy password: %w", err)
	}
	member.Password = string(hashedPassword)
	logger.Info().Str("member_id", member.ID).Msg("upgraded legacy plaintext password")
	return nil
}

// IssueToken signs a session token for member.
func (s *AuthService) IssueToken(member *models.Member) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenDurat)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   member.ID,
		"email": member.Email,
		"name":  member.Name,
		"jti":   uuid.New().String(),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, time.Unix(expiresAt.Unix(), 0), nil
}

// ValidateToken parses and validates a session token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, ok := claims["exp"]; !ok {
		return nil, errors.New("invalid token: missing expiry")
	}
	if jti, _ := claims["jti"].(string); jti != "" && s.revoked != nil && s.revoked.IsRevoked(jti) {
		return nil, errors.New("invalid token: revoked")
	}
	return claims, nil
}

// Authenticate resolves a session token to the identity of an existing
// member. The member store is consulted on every call.
func (s *AuthService) Authenticate(tokenString string) (*models.Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	memberID, _ := claims["sub"].(string)
	if memberID == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	member, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown member", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}

	identity := member.Identity()
	identity.TokenID, _ = claims["jti"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		identity.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return identity, nil
}

// RevokeToken invalidates the session token the identity authenticated with.
func (s *AuthService) RevokeToken(identity *models.Identity) {
	if s.revoked == nil || identity == nil || identity.TokenID == "" {
		return
	}
	s.revoked.Revoke(identity.TokenID, identity.ExpiresAt)
}

// GetMember returns a member by ID.
func (s *AuthService) GetMember(id string) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return member, nil
}

// ListMembers returns every member without password data.
func (s *AuthService) ListMembers() ([]models.MemberResponse, error) {
	members, err := s.memberRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	out := make([]models.MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, members[i].Public())
	}
	return out, nil
}
