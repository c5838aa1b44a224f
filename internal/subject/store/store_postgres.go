package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/subject/models"
	dErrors "inkwell/pkg/domain-errors"
)

const subjectColumns = `id, email, password_hash, role, active, token_epoch, created_at`

// PostgresStore persists subjects in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed subject store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, subject *models.Subject) error {
	if subject == nil {
		return fmt.Errorf("subject is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subjects (id, email, password_hash, role, active, token_epoch, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		subject.ID, subject.Email, subject.PasswordHash, string(subject.Role),
		subject.Active, subject.TokenEpoch, subject.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "email already registered")
		}
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
	subject, err := scanSubject(row)
	if err != nil {
		return nil, fmt.Errorf("find subject by id: %w", err)
	}
	return subject, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Subject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE email = $1`, email)
	subject, err := scanSubject(row)
	if err != nil {
		return nil, fmt.Errorf("find subject by email: %w", err)
	}
	return subject, nil
}

func (s *PostgresStore) IncrementEpoch(ctx context.Context, id uuid.UUID) (int64, error) {
	var epoch int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE subjects SET token_epoch = token_epoch + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING token_epoch`, id).Scan(&epoch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return 0, fmt.Errorf("increment token epoch: %w", err)
	}
	return epoch, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE subjects SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set subject active: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set subject active rows: %w", err)
	}
	if rows == 0 {
		return dErrors.New(dErrors.CodeNotFound, "subject not found")
	}
	return nil
}

func scanSubject(row *sql.Row) (*models.Subject, error) {
	var (
		subject models.Subject
		role    string
	)
	err := row.Scan(&subject.ID, &subject.Email, &subject.PasswordHash, &role,
		&subject.Active, &subject.TokenEpoch, &subject.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, err
	}
	subject.Role = models.Role(role)
	return &subject, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
