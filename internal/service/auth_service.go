package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nexiq/storefront-api/internal/auth"
	"github.com/nexiq/storefront-api/internal/domain"
	"github.com/nexiq/storefront-api/internal/events"
	"github.com/nexiq/storefront-api/internal/repository"
	apperrors "github.com/nexiq/storefront-api/pkg/util"
)

// protectedProfileKeys can never be written through a profile upsert.
var protectedProfileKeys = []string{"role", "email", "_id", "id"}

// AuthService coordinates sign-in and account administration.
type AuthService struct {
	publisher
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
		users:     deps.UserRepo,
		tokenMgr:  deps.Tokens,
	}
}

// SignIn upserts the profile for email and issues a token for it. Identity is
// asserted by the client's sign-in provider; this call only records it.
func (s *AuthService) SignIn(ctx context.Context, email string, profile domain.Document) (*domain.UpsertResult, *domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, apperrors.NewValidationError("a valid email is required", map[string]any{"email": email})
	}

	result, err := s.users.Upsert(ctx, email, profile.Without(protectedProfileKeys...))
	if err != nil {
		return nil, nil, apperrors.StoreError("user", err)
	}

	token, _, err := s.tokenMgr.Issue(email)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return result, &domain.Identity{Email: email, Token: token}, nil
}

// GetUser returns the record for email.
func (s *AuthService) GetUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.StoreError("user", err)
	}
	return user, nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.StoreError("user", err)
	}
	return users, nil
}

// PromoteToAdmin grants the admin role to the account keyed by email.
func (s *AuthService) PromoteToAdmin(ctx context.Context, actor, email string) (*domain.UpdateResult, error) {
	result, err := s.users.UpdateRole(ctx, email, domain.RoleAdmin)
	if err != nil {
		return nil, apperrors.StoreError("user", err)
	}
	if result.ModifiedCount > 0 {
		s.logger.Info("user promoted to admin", zap.String("email", email), zap.String("actor", actor))
		s.publish(ctx, events.Event{
			Type:    events.EventUserPromoted,
			Subject: email,
			Actor:   actor,
			Payload: events.UserPromotedPayload{Email: email},
		})
	}
	return result, nil
}

// DeleteUser removes the account with the given record id.
func (s *AuthService) DeleteUser(ctx context.Context, actor, id string) (*domain.DeleteResult, error) {
	result, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.StoreError("user", err)
	}
	if result.DeletedCount > 0 {
		s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor", actor))
		s.publish(ctx, events.Event{
			Type:    events.EventUserDeleted,
			Subject: id,
			Actor:   actor,
			Payload: events.UserDeletedPayload{UserID: id},
		})
	}
	return result, nil
}

// IsAdmin answers whether email holds the admin role, but only when the
// caller asks about itself. Any other email answers false without a lookup.
func (s *AuthService) IsAdmin(ctx context.Context, subject, email string) (bool, error) {
	if subject == "" || subject != email {
		return false, nil
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, apperrors.NewUpstreamError(err)
	}
	return user.IsAdmin(), nil
}
