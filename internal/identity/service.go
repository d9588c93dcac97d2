package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/benchdesk/benchdesk/internal/authz"
	"github.com/benchdesk/benchdesk/internal/shared"
)

// Service resolves authenticated users into authorization contexts.
type Service struct {
	repo     Repository
	registry *authz.Registry
	cache    *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService constructs a Service. cache may be nil; resolution then
// hits the repository on every call.
func NewService(repo Repository, registry *authz.Registry, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, registry: registry, cache: cache, ttl: ttl, logger: logger}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Account{}, shared.ErrInvalidCredentials
	}
	if !acc.IsActive {
		return Account{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return Account{}, shared.ErrInvalidCredentials
	}
	return acc, nil
}

// InitializePermissions builds the resolved authorization context for a
// session: the user's roles flattened through the registry plus their
// restrictions. Results are cached in redis for the session TTL and
// concurrent resolutions of the same user are collapsed.
func (s *Service) InitializePermissions(ctx context.Context, userID string) (*authz.UserPermissions, error) {
	v, err, _ := s.group.Do(userID, func() (any, error) {
		if cached := s.fromCache(ctx, userID); cached != nil {
			return cached, nil
		}
		u, err := s.resolve(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.toCache(ctx, u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*authz.UserPermissions), nil
}

// ClearPermissions drops the cached authorization context at logout.
func (s *Service) ClearPermissions(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, cacheKey(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, userID string) (*authz.UserPermissions, error) {
	roles, err := s.repo.RolesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	restrictions, err := s.repo.RestrictionsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	var grants []authz.Grant
	kept := make([]string, 0, len(roles))
	for _, role := range roles {
		if !s.registry.Defined(role) {
			// A role assigned in the database but absent from the catalog
			// grants nothing; skipping it keeps resolution fail-closed.
			s.logger.Warn("undefined role assigned", slog.String("user_id", userID), slog.String("role", role))
			continue
		}
		kept = append(kept, role)
		grants = append(grants, s.registry.Resolve(role)...)
	}

	return &authz.UserPermissions{
		UserID:       userID,
		Roles:        kept,
		Grants:       dedupeGrants(grants),
		Restrictions: restrictions,
	}, nil
}

func dedupeGrants(grants []authz.Grant) []authz.Grant {
	seen := make(map[authz.Grant]struct{}, len(grants))
	out := make([]authz.Grant, 0, len(grants))
	for _, g := range grants {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func (s *Service) fromCache(ctx context.Context, userID string) *authz.UserPermissions {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("authz cache read", slog.Any("error", err))
		}
		return nil
	}
	var u authz.UserPermissions
	if err := json.Unmarshal(data, &u); err != nil {
		s.logger.Warn("authz cache decode", slog.Any("error", err))
		return nil
	}
	return &u
}

func (s *Service) toCache(ctx context.Context, u *authz.UserPermissions) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(u)
	if err != nil {
		s.logger.Warn("authz cache encode", slog.Any("error", err))
		return
	}
	if err := s.cache.Set(ctx, cacheKey(u.UserID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("authz cache write", slog.Any("error", err))
	}
}

func cacheKey(userID string) string {
	return "authz:user:" + userID
}
