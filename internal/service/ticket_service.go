package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/events"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket records a purchase for the caller in PENDING status.
func (s *TicketService) CreateTicket(ctx context.Context, callerID int64, amount float64, attachmentLink string) (*domain.Ticket, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, apperrors.NewInvalidParameter("Invalid amount")
	}

	caller, err := activeUser(ctx, s.users, callerID)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		PurchaserID:    caller.ID,
		Amount:         amount,
		AttachmentLink: attachmentLink,
		Status:         domain.TicketStatusPending,
		PurchaseTime:   s.now(),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrPurchaserMissing) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": callerID})
		}
		return nil, apperrors.NewStoreInsertError("Create ticket failed", err)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(
		events.EventTicketCreated,
		ticket.ID,
		events.Actor{UserID: caller.ID, Role: caller.Role},
		events.TicketCreatedPayload{PurchaserID: caller.ID, Amount: ticket.Amount, AttachmentLink: ticket.AttachmentLink},
	))
	return ticket, nil
}

// ListTicketsForCaller returns the caller's own tickets for an Employee and
// every ticket for an Employer, each joined with its owner's email and username.
func (s *TicketService) ListTicketsForCaller(ctx context.Context, callerEmail string) ([]domain.TicketWithOwner, error) {
	caller, err := s.users.GetActiveByEmail(ctx, callerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": callerEmail})
		}
		return nil, apperrors.NewStoreQueryError("Query ticket list failed", err)
	}

	var purchaser *int64
	if !caller.IsEmployer() {
		purchaser = &caller.ID
	}
	items, err := s.tickets.ListWithOwner(ctx, purchaser)
	if err != nil {
		return nil, apperrors.NewStoreQueryError("Query ticket list failed", err)
	}
	return items, nil
}

// TransitionStatus moves a ticket to statusName. Only an active Employer may
// transition, and any status may follow any other. The role is checked before
// the status name, so an Employee is refused whatever it sends.
func (s *TicketService) TransitionStatus(ctx context.Context, ticketID int64, statusName string, callerID int64) (*domain.Ticket, error) {
	caller, err := activeUser(ctx, s.users, callerID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireRole(caller, domain.RoleEmployer); err != nil {
		return nil, err
	}
	status, ok := domain.ParseTicketStatus(statusName)
	if !ok {
		return nil, apperrors.NewInvalidParameter("Invalid ticket status")
	}

	ticket, previous, err := s.tickets.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreUpdateError("Approve or reject ticket failed", err)
	}

	s.logger.Info("ticket status changed",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(ticket.Status)),
		zap.Int64("actor_id", caller.ID))
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(
		events.EventTicketStatusChanged,
		ticket.ID,
		events.Actor{UserID: caller.ID, Role: caller.Role},
		events.TicketStatusChangedPayload{PurchaserID: ticket.PurchaserID, OldStatus: previous, NewStatus: ticket.Status},
	))
	return ticket, nil
}
