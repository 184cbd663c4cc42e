package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/reimbursement-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	ListWithOwner(ctx context.Context, purchaserID *int64) ([]domain.TicketWithOwner, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) (updated *domain.Ticket, previous domain.TicketStatus, err error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, purchaser_id, amount, attachment_link, status, purchase_time, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (purchaser_id, amount, attachment_link, status, purchase_time)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.PurchaserID,
		ticket.Amount,
		ticket.AttachmentLink,
		string(ticket.Status),
		ticket.PurchaseTime,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if pgErrorCode(err) == pgForeignKeyViolation {
		return ErrPurchaserMissing
	}
	return err
}

// ListWithOwner returns the purchaser's tickets when purchaserID is set, every
// ticket otherwise. Owner details are joined at query time.
func (r *ticketRepository) ListWithOwner(ctx context.Context, purchaserID *int64) ([]domain.TicketWithOwner, error) {
	const (
		byPurchaser = `
        SELECT t.id, t.purchaser_id, t.amount, t.attachment_link, t.status, t.purchase_time,
               t.created_at, t.updated_at, u.email, u.username
        FROM tickets t
        JOIN users u ON u.id = t.purchaser_id
        WHERE t.purchaser_id=$1
        ORDER BY t.id DESC`
		everyone = `
        SELECT t.id, t.purchaser_id, t.amount, t.attachment_link, t.status, t.purchase_time,
               t.created_at, t.updated_at, COALESCE(u.email, ''), COALESCE(u.username, '')
        FROM tickets t
        LEFT JOIN users u ON u.id = t.purchaser_id
        ORDER BY t.id DESC`
	)

	var (
		rows pgx.Rows
		err  error
	)
	if purchaserID != nil {
		rows, err = r.db.Query(ctx, byPurchaser, *purchaserID)
	} else {
		rows, err = r.db.Query(ctx, everyone)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketWithOwner{}
	for rows.Next() {
		var (
			item   domain.TicketWithOwner
			status string
		)
		if err := rows.Scan(
			&item.Ticket.ID,
			&item.Ticket.PurchaserID,
			&item.Ticket.Amount,
			&item.Ticket.AttachmentLink,
			&status,
			&item.Ticket.PurchaseTime,
			&item.Ticket.CreatedAt,
			&item.Ticket.UpdatedAt,
			&item.Owner.Email,
			&item.Owner.Username,
		); err != nil {
			return nil, err
		}
		item.Ticket.Status = domain.TicketStatus(status)
		result = append(result, item)
	}
	return result, rows.Err()
}

// UpdateStatus locks the ticket row, records its current status and writes the new one.
func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) (*domain.Ticket, domain.TicketStatus, error) {
	const (
		lock   = `SELECT status FROM tickets WHERE id=$1 FOR UPDATE`
		update = `
        UPDATE tickets SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + ticketColumns
	)

	var (
		previous string
		updated  *domain.Ticket
	)
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, lock, id).Scan(&previous); err != nil {
			return notFound(err)
		}
		ticket, err := scanTicket(tx.QueryRow(ctx, update, string(status), id))
		if err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return updated, domain.TicketStatus(previous), nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		status string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.PurchaserID,
		&ticket.Amount,
		&ticket.AttachmentLink,
		&status,
		&ticket.PurchaseTime,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}
