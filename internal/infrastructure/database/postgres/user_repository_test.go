package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"lms-backend/internal/domain/user"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	return &DB{DB: db}, mock
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role"}).
		AddRow(id.String(), "alice wonder", "alice@x.com", "hash", "USER")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "Alice@X.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, user.RoleUser, got.Role)
	assert.False(t, got.HasPendingReset())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ConsumeResetToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "abc", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
			AddRow(id.String(), "bob@x.com", "new-hash", "USER"))
	mock.ExpectCommit()

	got, err := repo.ConsumeResetToken(context.Background(), "abc", time.Now(), "new-hash")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.False(t, got.HasPendingReset())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ConsumeResetToken_NoMatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE reset_token_hash = $5 AND reset_token_expiry > $6`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	_, err := repo.ConsumeResetToken(context.Background(), "abc", time.Now(), "new-hash")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "idx_users_email"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &user.User{Name: "alice", Email: "alice@x.com", Role: user.RoleUser})
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ClearExpiredResets(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.ClearExpiredResets(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&pgconn.PgError{Code: uniqueViolation}))
	assert.False(t, isDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicateKey(assert.AnError))
}
