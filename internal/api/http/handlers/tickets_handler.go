package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/api/dto"
	"github.com/spec-kit/reimbursement-service/internal/service"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// TicketsHandler manages reimbursement ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	if caller.Suspended {
		return apperrors.NewInvalidParameter("User not exist")
	}

	tickets, err := h.service.ListTicketsForCaller(c.UserContext(), caller.Email)
	if err != nil {
		return orStoreError(err, apperrors.NewStoreQueryError, "Query ticket list failed")
	}
	items := make([]dto.TicketListItem, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketListItem(&tickets[i]))
	}
	return ok(c, items)
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidParameter("Invalid ticket data")
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), caller.ID, req.Amount, req.AttachmentLink)
	if err != nil {
		return orStoreError(err, apperrors.NewStoreInsertError, "Create ticket failed")
	}
	return ok(c, dto.NewTicketResponse(ticket))
}

// UpdateStatus PUT /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return apperrors.NewInvalidParameter("Invalid ticket id")
	}
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidParameter("Invalid ticket status")
	}

	ticket, err := h.service.TransitionStatus(c.UserContext(), int64(id), req.Status, caller.ID)
	if err != nil {
		return orStoreError(err, apperrors.NewStoreUpdateError, "Approve or reject ticket failed")
	}
	return ok(c, dto.NewTicketStatusResponse(ticket))
}
