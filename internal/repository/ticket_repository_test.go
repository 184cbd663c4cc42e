package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

var (
	ticketCols      = []string{"id", "purchaser_id", "amount", "attachment_link", "status", "purchase_time", "created_at", "updated_at"}
	ticketOwnerCols = append(append([]string{}, ticketCols...), "email", "username")
)

func TestTicketCreate(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)
	purchased := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO tickets`).
		WithArgs(int64(3), 42.5, "static/a.pdf", "PENDING", purchased).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	ticket := &domain.Ticket{PurchaserID: 3, Amount: 42.5, AttachmentLink: "static/a.pdf", Status: domain.TicketStatusPending, PurchaseTime: purchased}
	require.NoError(t, repo.Create(context.Background(), ticket))
	assert.Equal(t, int64(11), ticket.ID)
}

func TestTicketCreate_MissingPurchaser(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)
	purchased := time.Now()

	mock.ExpectQuery(`INSERT INTO tickets`).
		WithArgs(int64(99), 1.0, "", "PENDING", purchased).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.Create(context.Background(), &domain.Ticket{PurchaserID: 99, Amount: 1, Status: domain.TicketStatusPending, PurchaseTime: purchased})
	assert.ErrorIs(t, err, ErrPurchaserMissing)
}

func TestTicketListWithOwner_ByPurchaser(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)
	now := time.Now()
	owner := int64(3)

	mock.ExpectQuery(`JOIN users u ON u.id = t.purchaser_id\s+WHERE t.purchaser_id=\$1`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows(ticketOwnerCols).
			AddRow(int64(8), owner, 10.0, "", "APPROVED", now, now, now, "a@x.com", "alice").
			AddRow(int64(4), owner, 2.25, "static/x.png", "PENDING", now, now, now, "a@x.com", "alice"))

	items, err := repo.ListWithOwner(context.Background(), &owner)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(8), items[0].Ticket.ID)
	assert.Equal(t, domain.TicketStatusApproved, items[0].Ticket.Status)
	assert.Equal(t, "alice", items[1].Owner.Username)
}

func TestTicketListWithOwner_Everyone(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`LEFT JOIN users u`).
		WillReturnRows(pgxmock.NewRows(ticketOwnerCols).
			AddRow(int64(2), int64(1), 5.0, "", "PAID", now, now, now, "", ""))

	items, err := repo.ListWithOwner(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Owner.Email)
}

func TestTicketListWithOwner_Empty(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)

	mock.ExpectQuery(`LEFT JOIN users u`).WillReturnRows(pgxmock.NewRows(ticketOwnerCols))

	items, err := repo.ListWithOwner(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestTicketUpdateStatus(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM tickets WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(6)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("PENDING"))
	mock.ExpectQuery(`UPDATE tickets SET status=\$1`).
		WithArgs("APPROVED", int64(6)).
		WillReturnRows(pgxmock.NewRows(ticketCols).AddRow(int64(6), int64(3), 9.99, "", "APPROVED", now, now, now))
	mock.ExpectCommit()

	updated, previous, err := repo.UpdateStatus(context.Background(), 6, domain.TicketStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, previous)
	assert.Equal(t, domain.TicketStatusApproved, updated.Status)
}

func TestTicketUpdateStatus_MissingTicketRollsBack(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM tickets WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.UpdateStatus(context.Background(), 404, domain.TicketStatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTicketUpdateStatus_BeginFails(t *testing.T) {
	mock := newMockDB(t)
	repo := NewTicketRepository(mock)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	_, _, err := repo.UpdateStatus(context.Background(), 1, domain.TicketStatusPaid)
	assert.EqualError(t, err, "pool exhausted")
}
