package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-backend/internal/models"
)

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

func (r *ContactRepo) Create(ctx context.Context, m *models.ContactMessage) error {
	query := `INSERT INTO contact_messages (name, email, subject, message)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at, is_read`

	return r.pool.QueryRow(ctx, query, m.Name, m.Email, m.Subject, m.Message).
		Scan(&m.ID, &m.CreatedAt, &m.IsRead)
}

func (r *ContactRepo) GetByID(ctx context.Context, id int64) (*models.ContactMessage, error) {
	m := &models.ContactMessage{}
	query := `SELECT id, name, email, COALESCE(subject, ''), message, is_read, created_at
		FROM contact_messages WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns messages newest first together with the total matching count.
func (r *ContactRepo) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]*models.ContactMessage, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM contact_messages WHERE ($1 = FALSE OR is_read = FALSE)", unreadOnly,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, email, COALESCE(subject, ''), message, is_read, created_at
		FROM contact_messages
		WHERE ($1 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := make([]*models.ContactMessage, 0)
	for rows.Next() {
		m := &models.ContactMessage{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// MarkRead returns pgx.ErrNoRows when the message does not exist.
func (r *ContactRepo) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "UPDATE contact_messages SET is_read = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
