package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userRowColumns = []string{"id", "first_name", "last_name", "email", "password", "role", "address", "phone_number", "profile_image", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgres_GetByID(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(3, "Ann", "Lee", "ann@x.com", "$2a$hash", "user", nil, "0800", []byte(`[{"filename":"a.png","filePath":"uploads/x.png"}]`), now, now)
	mock.ExpectQuery("FROM users\\s+WHERE id = \\$1").WithArgs(3).WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ann@x.com" || u.Role != RoleUser || u.PhoneNumber != "0800" || u.Address != "" {
		t.Fatalf("unexpected user %+v", u)
	}
	if len(u.ProfileImage) != 1 || u.ProfileImage[0].FilePath != "uploads/x.png" {
		t.Fatalf("profile images not decoded: %+v", u.ProfileImage)
	}
	if !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected createdAt %v", u.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgres_GetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectQuery("FROM users\\s+WHERE email = \\$1").WithArgs("none@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "none@x.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_Create(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(1, "Ann", "Lee", "ann@x.com", "hash", "user", nil, nil, []byte(`[]`), now, now)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ann", "Lee", "ann@x.com", "hash", "user", nil, nil, "[]").
		WillReturnRows(rows)

	u, err := repo.Create(context.Background(), User{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", Password: "hash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 1 || u.ProfileImage == nil {
		t.Fatalf("unexpected user %+v", u)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgres_Create_UniqueViolation(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), User{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", Password: "hash"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestPostgres_Update(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	images := `[{"filename":"a.png","filePath":"p"}]`
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(7, "Ann", "Lee", "ann@x.com", "hash", "user", "Street 1", nil, []byte(images), now, now)
	mock.ExpectQuery("UPDATE users").
		WithArgs("Ann", "Lee", "ann@x.com", "hash", "Street 1", nil, images, 7).
		WillReturnRows(rows)

	u, err := repo.Update(context.Background(), User{
		ID: 7, FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", Password: "hash", Address: "Street 1",
		ProfileImage: []Attachment{{Filename: "a.png", FilePath: "p"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Address != "Street 1" || len(u.ProfileImage) != 1 {
		t.Fatalf("unexpected user %+v", u)
	}

	mock.ExpectQuery("UPDATE users").WillReturnError(sql.ErrNoRows)
	if _, err := repo.Update(context.Background(), User{ID: 8}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgres_ListByRole(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow(1, "A", "A", "a@x.com", "h", "user", nil, nil, []byte(`[]`), now, now).
		AddRow(2, "B", "B", "b@x.com", "h", "user", nil, nil, []byte(`[]`), now, now)
	mock.ExpectQuery("WHERE role = \\$1\\s+ORDER BY id").WithArgs("user").WillReturnRows(rows)

	users, err := repo.ListByRole(context.Background(), RoleUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].ID != 1 || users[1].ID != 2 {
		t.Fatalf("unexpected users %+v", users)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgres_Delete(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM users").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(context.Background(), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("DELETE FROM users").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
