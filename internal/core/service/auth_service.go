package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// Session claim names shared with the Auth middleware.
const (
	ClaimSubject     = "sub"
	ClaimIdentifier  = "identifier"
	ClaimAPI         = "api"
	ClaimPermissions = "permissions"
)

// AuthService logs users in through the strategy registered for each API and
// issues HS256 session tokens.
type AuthService struct {
	users      ports.UserRepository
	roles      ports.RoleRepository
	strategies map[string]ports.AuthenticationStrategy
	jwtSecret  string
	tokenTTL   time.Duration
	log        zerolog.Logger
}

// NewAuthService wires strategies by API type, for instance
// {"admin": keycloakAdmin, "shop": keycloakCustomer}.
func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	strategies map[string]ports.AuthenticationStrategy,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		roles:      roles,
		strategies: strategies,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

func (s *AuthService) Login(ctx context.Context, apiType, token string) (string, *domain.User, error) {
	if token == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	strategy, ok := s.strategies[apiType]
	if !ok {
		return "", nil, fmt.Errorf("login: %w: no strategy for %q api", domain.ErrInvalidInput, apiType)
	}

	user, err := strategy.Authenticate(ctx, token)
	if err != nil {
		return "", nil, err
	}
	return s.startSession(ctx, apiType, user)
}

// LoginWithPassword authenticates a user holding a native authentication
// method, such as the bootstrapped super-admin, on the admin API.
func (s *AuthService) LoginWithPassword(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	if identifier == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	var native *domain.NativeAuthenticationMethod
	for _, m := range user.AuthenticationMethods {
		if n, ok := m.(*domain.NativeAuthenticationMethod); ok {
			native = n
			break
		}
	}
	if native == nil || bcrypt.CompareHashAndPassword([]byte(native.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, domain.APITypeAdmin, user)
}

// AuthenticationMethods returns the methods registered for a user.
func (s *AuthService) AuthenticationMethods(ctx context.Context, userID string) ([]domain.AuthenticationMethod, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.AuthenticationMethods, nil
}

func (s *AuthService) startSession(ctx context.Context, apiType string, user *domain.User) (string, *domain.User, error) {
	roles, err := s.roles.FindByIDs(ctx, user.RoleIDs)
	if err != nil {
		return "", nil, fmt.Errorf("load roles: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	token, err := s.generateToken(apiType, user, domain.PermissionsOf(roles), now)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) generateToken(apiType string, user *domain.User, perms []domain.Permission, now time.Time) (string, error) {
	names := make([]string, 0, len(perms)+1)
	names = append(names, string(domain.PermissionAuthenticated))
	for _, p := range perms {
		if p != domain.PermissionAuthenticated {
			names = append(names, string(p))
		}
	}

	claims := jwt.MapClaims{
		ClaimSubject:     user.ID,
		ClaimIdentifier:  user.Identifier,
		ClaimAPI:         apiType,
		ClaimPermissions: names,
		"iat":            now.Unix(),
		"exp":            now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
