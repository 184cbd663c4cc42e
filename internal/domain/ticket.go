package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusApproved TicketStatus = "APPROVED"
	TicketStatusRejected TicketStatus = "REJECTED"
	TicketStatusPaid     TicketStatus = "PAID"
)

var ticketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusApproved,
	TicketStatusRejected,
	TicketStatusPaid,
}

// ParseTicketStatus maps a canonical name ("APPROVED") or lower-case value
// ("approved") to a TicketStatus. ok is false for anything else.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	for _, st := range ticketStatuses {
		if string(st) == s || st.Value() == s {
			return st, true
		}
	}
	return "", false
}

// Value returns the lower-case form of the status.
func (s TicketStatus) Value() string {
	switch s {
	case TicketStatusPending:
		return "pending"
	case TicketStatusApproved:
		return "approved"
	case TicketStatusRejected:
		return "rejected"
	case TicketStatusPaid:
		return "paid"
	}
	return ""
}

// Ticket is an expense claim submitted by an employee.
type Ticket struct {
	ID             int64
	PurchaserID    int64
	Amount         float64
	AttachmentLink string
	Status         TicketStatus
	PurchaseTime   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TicketOwner is the purchaser snapshot joined at query time.
type TicketOwner struct {
	Email    string
	Username string
}

// TicketWithOwner pairs a ticket with its purchaser's contact details.
type TicketWithOwner struct {
	Ticket Ticket
	Owner  TicketOwner
}
