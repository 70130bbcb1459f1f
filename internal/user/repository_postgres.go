package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `id, first_name, last_name, email, password, role, address, phone_number, profile_image, created_at, updated_at`

	getUserByIDQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	getUserByEmailQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	listUsersByRoleQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1
		ORDER BY id
	`
	insertUserQuery = `
		INSERT INTO users (first_name, last_name, email, password, role, address, phone_number, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	updateUserQuery = `
		UPDATE users
		SET first_name = $1,
			last_name = $2,
			email = $3,
			password = $4,
			address = $5,
			phone_number = $6,
			profile_image = $7,
			updated_at = now()
		WHERE id = $8
		RETURNING ` + userColumns
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	if user.Role == "" {
		user.Role = RoleUser
	}
	images, err := encodeImages(user.ProfileImage)
	if err != nil {
		return User{}, err
	}

	row := r.db.QueryRowContext(ctx, insertUserQuery,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		string(user.Role),
		nullString(user.Address),
		nullString(user.PhoneNumber),
		images,
	)
	created, err := scanUser(row)
	if err != nil {
		return User{}, mapWriteError(err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, getUserByEmailQuery, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersByRoleQuery, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user User) (User, error) {
	images, err := encodeImages(user.ProfileImage)
	if err != nil {
		return User{}, err
	}

	row := r.db.QueryRowContext(ctx, updateUserQuery,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		nullString(user.Address),
		nullString(user.PhoneNumber),
		images,
		user.ID,
	)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, mapWriteError(err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var (
		role    string
		address sql.NullString
		phone   sql.NullString
		images  []byte
	)

	if err := scanner.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&role,
		&address,
		&phone,
		&images,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return User{}, err
	}

	user.Role = Role(role)
	user.Address = address.String
	user.PhoneNumber = phone.String
	user.ProfileImage = []Attachment{}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &user.ProfileImage); err != nil {
			return User{}, fmt.Errorf("decode profile_image: %w", err)
		}
	}

	return user, nil
}

func encodeImages(images []Attachment) (string, error) {
	if images == nil {
		images = []Attachment{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode profile_image: %w", err)
	}
	return string(b), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}
