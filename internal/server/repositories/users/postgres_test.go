package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var created = time.Date(2024, 3, 5, 18, 45, 7, 0, time.UTC)

const insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*password,\s*is_email_verified,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "hash", false, "2024-03-05 18:45:07").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash", CreatedAt: created}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" || got.Username != "alice" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", CreatedAt: created})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", CreatedAt: created})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const selectQuery = `(?s)^SELECT\s+id,\s*username,\s*email,\s*password,\s*is_email_verified,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password", "is_email_verified", "created_at"}).
		AddRow("u-1", "alice", "alice@example.com", "hash", true, "2024-03-05 18:45:07")
	mock.ExpectQuery(selectQuery).WithArgs("alice@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	want := models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Password: "hash", IsEmailVerified: true, CreatedAt: created}
	if *got != want {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("alice@example.com").WillReturnError(errors.New("db err"))

	_, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE\s+users\s+SET\s+password\s*=\s*\$1\s+WHERE\s+email\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs("newhash", "alice@example.com").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdatePassword(context.Background(), "alice@example.com", "newhash"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}

	mock.ExpectExec(q).WithArgs("newhash", "ghost@example.com").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.UpdatePassword(context.Background(), "ghost@example.com", "newhash"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetEmailVerified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE\s+users\s+SET\s+is_email_verified\s*=\s*\$1\s+WHERE\s+email\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs(true, "alice@example.com").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SetEmailVerified(context.Background(), "alice@example.com", true); err != nil {
		t.Fatalf("SetEmailVerified error: %v", err)
	}

	mock.ExpectExec(q).WithArgs(true, "alice@example.com").WillReturnError(errors.New("db down"))
	if err := repo.SetEmailVerified(context.Background(), "alice@example.com", true); err == nil {
		t.Fatal("expected error")
	}
}

func TestDeleteByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("alice@example.com").WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := repo.DeleteByEmail(context.Background(), "alice@example.com")
	if err != nil || n != 1 {
		t.Fatalf("DeleteByEmail = %d, %v", n, err)
	}

	mock.ExpectExec(q).WithArgs("alice@example.com").WillReturnResult(sqlmock.NewResult(0, 0))
	n, err = repo.DeleteByEmail(context.Background(), "alice@example.com")
	if err != nil || n != 0 {
		t.Fatalf("DeleteByEmail = %d, %v", n, err)
	}

	mock.ExpectExec(q).WithArgs("alice@example.com").WillReturnError(errors.New("db down"))
	if _, err := repo.DeleteByEmail(context.Background(), "alice@example.com"); err == nil {
		t.Fatal("expected error")
	}
}
