package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"inkwell/internal/subject/models"
	dErrors "inkwell/pkg/domain-errors"
)

var (
	now          = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	errConnReset = errors.New("connection reset by peer")
)

// =============================================================================
// In-memory store
// =============================================================================

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	subject := models.NewSubject("Ada@Example.com ", "hash", "", now)
	s.Require().NoError(s.store.Create(s.ctx, subject))

	byID, err := s.store.FindByID(s.ctx, subject.ID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", byID.Email)
	s.Equal(models.RoleAuthor, byID.Role)

	byEmail, err := s.store.FindByEmail(s.ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(subject.ID, byEmail.ID)
}

func (s *InMemoryStoreSuite) TestDuplicateEmailConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, models.NewSubject("a@b.c", "h", "", now)))
	err := s.store.Create(s.ctx, models.NewSubject("a@b.c", "h", "", now))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *InMemoryStoreSuite) TestMissingSubject() {
	_, err := s.store.FindByID(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.store.IncrementEpoch(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.store.SetActive(s.ctx, uuid.New(), false), dErrors.CodeNotFound))
}

func (s *InMemoryStoreSuite) TestEpochAndActive() {
	subject := models.NewSubject("a@b.c", "h", "", now)
	s.Require().NoError(s.store.Create(s.ctx, subject))

	epoch, err := s.store.IncrementEpoch(s.ctx, subject.ID)
	s.Require().NoError(err)
	s.EqualValues(1, epoch)
	epoch, err = s.store.IncrementEpoch(s.ctx, subject.ID)
	s.Require().NoError(err)
	s.EqualValues(2, epoch)

	s.Require().NoError(s.store.SetActive(s.ctx, subject.ID, false))
	got, err := s.store.FindByID(s.ctx, subject.ID)
	s.Require().NoError(err)
	s.False(got.Active)
	s.EqualValues(2, got.TokenEpoch)
}

func (s *InMemoryStoreSuite) TestReturnedSubjectsAreCopies() {
	subject := models.NewSubject("a@b.c", "h", "", now)
	s.Require().NoError(s.store.Create(s.ctx, subject))

	got, err := s.store.FindByID(s.ctx, subject.ID)
	s.Require().NoError(err)
	got.Active = false

	again, err := s.store.FindByID(s.ctx, subject.ID)
	s.Require().NoError(err)
	s.True(again.Active)
}

// =============================================================================
// PostgreSQL store (sqlmock)
// =============================================================================

func newMockedStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgres(db), mock
}

func subjectRow(s *models.Subject) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "active", "token_epoch", "created_at"}).
		AddRow(s.ID.String(), s.Email, s.PasswordHash, string(s.Role), s.Active, s.TokenEpoch, s.CreatedAt)
}

func TestPostgresStore_Create(t *testing.T) {
	store, mock := newMockedStore(t)
	subject := models.NewSubject("a@b.c", "hash", models.RoleEditor, now)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(subject.ID, "a@b.c", "hash", "editor", true, int64(0), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Create(context.Background(), subject))
}

func TestPostgresStore_CreateDuplicate(t *testing.T) {
	store, mock := newMockedStore(t)
	subject := models.NewSubject("a@b.c", "hash", "", now)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := store.Create(context.Background(), subject)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestPostgresStore_FindByEmail(t *testing.T) {
	store, mock := newMockedStore(t)
	subject := models.NewSubject("a@b.c", "hash", "", now)
	subject.TokenEpoch = 4

	mock.ExpectQuery("SELECT (.+) FROM subjects WHERE email = \\$1").
		WithArgs("a@b.c").
		WillReturnRows(subjectRow(subject))

	got, err := store.FindByEmail(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, subject.ID, got.ID)
	assert.Equal(t, models.RoleAuthor, got.Role)
	assert.EqualValues(t, 4, got.TokenEpoch)
	assert.True(t, got.Active)
}

func TestPostgresStore_FindByIDNotFound(t *testing.T) {
	store, mock := newMockedStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM subjects WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindByID(context.Background(), id)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestPostgresStore_IncrementEpoch(t *testing.T) {
	store, mock := newMockedStore(t)
	id := uuid.New()

	mock.ExpectQuery("UPDATE subjects SET token_epoch = token_epoch \\+ 1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"token_epoch"}).AddRow(int64(7)))

	epoch, err := store.IncrementEpoch(context.Background(), id)
	require.NoError(t, err)
	assert.EqualValues(t, 7, epoch)
}

func TestPostgresStore_SetActive(t *testing.T) {
	store, mock := newMockedStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE subjects SET active").
		WithArgs(id, false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetActive(context.Background(), id, false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestPostgresStore_InfrastructureErrorIsNotDomainError(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectQuery("SELECT (.+) FROM subjects WHERE email").
		WithArgs("a@b.c").
		WillReturnError(errConnReset)

	_, err := store.FindByEmail(context.Background(), "a@b.c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errConnReset))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
