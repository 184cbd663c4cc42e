package dto

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

func TestFormatMinute(t *testing.T) {
	if got := FormatMinute(time.Time{}); got != "" {
		t.Fatalf("zero time = %q, want empty", got)
	}
	ts := time.Date(2024, 3, 1, 9, 30, 59, 0, time.UTC)
	if got := FormatMinute(ts); got != "2024-03-01 09:30" {
		t.Fatalf("FormatMinute = %q", got)
	}
}

func TestNewTicketListItem(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	item := NewTicketListItem(&domain.TicketWithOwner{
		Ticket: domain.Ticket{
			ID:             3,
			Amount:         42.5,
			AttachmentLink: "/static/a.pdf",
			Status:         domain.TicketStatusRejected,
			PurchaseTime:   ts,
			CreatedAt:      ts,
		},
		Owner: domain.TicketOwner{Email: "a@x.com", Username: "alice"},
	})

	want := TicketListItem{
		ID:            3,
		Amount:        42.5,
		AttachmentURL: "/static/a.pdf",
		PaymentTime:   "2024-03-01 09:30",
		UserEmail:     "a@x.com",
		Username:      "alice",
		Status:        "REJECTED",
		CreatedAt:     "2024-03-01 09:30",
	}
	if diff := cmp.Diff(want, item); diff != "" {
		t.Fatalf("list item mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTicketStatusResponseCarriesPurchaser(t *testing.T) {
	resp := NewTicketStatusResponse(&domain.Ticket{ID: 1, PurchaserID: 9, Status: domain.TicketStatusPaid})
	if resp.PurchaserID != 9 || resp.Status != "PAID" || resp.PurchaseTime != "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
