package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/events"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// UserService covers account administration.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService constructs the service. dispatcher may be nil.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// ListUsers returns every account, active first and newest first within each
// group. Only an active Employer may list.
func (s *UserService) ListUsers(ctx context.Context, callerID int64) ([]domain.User, error) {
	caller, err := activeUser(ctx, s.users, callerID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireRole(caller, domain.RoleEmployer); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreQueryError("Query user list failed", err)
	}
	return users, nil
}

// SuspendUser sets or clears the suspended flag on the target account.
func (s *UserService) SuspendUser(ctx context.Context, actor *domain.Caller, targetID int64, suspended bool) (*domain.User, error) {
	user, err := s.users.SetSuspended(ctx, targetID, suspended)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": targetID})
		}
		return nil, apperrors.NewStoreUpdateError("Suspend user failed", err)
	}

	s.logger.Info("user suspension changed",
		zap.Int64("user_id", user.ID),
		zap.Bool("suspended", user.Suspended),
		zap.Int64("actor_id", actorOf(actor).UserID))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(
		events.EventUserSuspensionChanged,
		user.ID,
		actorOf(actor),
		events.UserSuspensionChangedPayload{Email: user.Email, Suspended: user.Suspended},
	))
	return user, nil
}

// activeUser loads a non-suspended account, mapping absence to NotFound.
func activeUser(ctx context.Context, users repository.UserRepository, id int64) (*domain.User, error) {
	user, err := users.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.NewStoreQueryError("Query user failed", err)
	}
	return user, nil
}

func actorOf(caller *domain.Caller) events.Actor {
	if caller == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: caller.ID, Role: caller.Role}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
