package dto

import (
	"time"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// minuteLayout renders timestamps to the minute.
const minuteLayout = "2006-01-02 15:04"

// FormatMinute formats t as "YYYY-MM-DD HH:MM", or "" for the zero time.
func FormatMinute(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(minuteLayout)
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Amount         float64 `json:"amount"`
	AttachmentLink string  `json:"attachment_link"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status string `json:"status"`
}

// TicketResponse is returned after creating a ticket.
type TicketResponse struct {
	TicketID       int64   `json:"ticket_id"`
	Amount         float64 `json:"amount"`
	AttachmentLink string  `json:"attachment_link"`
	PurchaseTime   string  `json:"purchase_time"`
	Status         string  `json:"status"`
}

// TicketStatusResponse is returned after a status transition.
type TicketStatusResponse struct {
	TicketID       int64   `json:"ticket_id"`
	Amount         float64 `json:"amount"`
	AttachmentLink string  `json:"attachment_link"`
	PurchaseTime   string  `json:"purchase_time"`
	PurchaserID    int64   `json:"purchaser_id"`
	Status         string  `json:"status"`
}

// TicketListItem is a ticket joined with its owner.
type TicketListItem struct {
	ID            int64   `json:"id"`
	Amount        float64 `json:"amount"`
	AttachmentURL string  `json:"attachmentUrl"`
	PaymentTime   string  `json:"paymentTime"`
	UserEmail     string  `json:"userEmail"`
	Username      string  `json:"username"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
}

func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:       t.ID,
		Amount:         t.Amount,
		AttachmentLink: t.AttachmentLink,
		PurchaseTime:   FormatMinute(t.PurchaseTime),
		Status:         string(t.Status),
	}
}

func NewTicketStatusResponse(t *domain.Ticket) TicketStatusResponse {
	return TicketStatusResponse{
		TicketID:       t.ID,
		Amount:         t.Amount,
		AttachmentLink: t.AttachmentLink,
		PurchaseTime:   FormatMinute(t.PurchaseTime),
		PurchaserID:    t.PurchaserID,
		Status:         string(t.Status),
	}
}

func NewTicketListItem(item *domain.TicketWithOwner) TicketListItem {
	return TicketListItem{
		ID:            item.Ticket.ID,
		Amount:        item.Ticket.Amount,
		AttachmentURL: item.Ticket.AttachmentLink,
		PaymentTime:   FormatMinute(item.Ticket.PurchaseTime),
		UserEmail:     item.Owner.Email,
		Username:      item.Owner.Username,
		Status:        string(item.Ticket.Status),
		CreatedAt:     FormatMinute(item.Ticket.CreatedAt),
	}
}
