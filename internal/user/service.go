package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wichananm65/account-service/internal/password"
)

const (
	MinPasswordLength = 8
	// MaxUploadBytes caps the combined size of one attachment request.
	MaxUploadBytes int64 = 50 << 20
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type TokenIssuer interface {
	Issue(userID int) (string, error)
}

type FileStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64) (string, error)
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateInput holds the self-service profile changes. A nil, empty or
// whitespace-only field keeps the stored value.
type UpdateInput struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Password    *string
	Address     *string
	PhoneNumber *string
}

type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Upload is a file received from a client, opened lazily.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenIssuer
	files  FileStore
}

func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer, files FileStore) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, files: files}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if err := checkPassword(in.Password); err != nil {
		return User{}, err
	}
	if isBlank(in.Email) {
		return User{}, ErrMissingFields
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}

	created, err := s.repo.Create(ctx, User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Password:     hashed,
		Role:         RoleUser,
		ProfileImage: []Attachment{},
	})
	if err != nil {
		return User{}, err
	}
	return created.Sanitize(), nil
}

func (s *Service) Login(ctx context.Context, email, plain string) (LoginResult, error) {
	found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if !s.hasher.Verify(plain, found.Password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(found.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: found.Sanitize(), Token: signed}, nil
}

func (s *Service) GetSelf(ctx context.Context, callerID int) (User, error) {
	found, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return User{}, err
	}
	return found.Sanitize(), nil
}

func (s *Service) UpdateSelf(ctx context.Context, callerID int, in UpdateInput) (User, error) {
	existing, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return User{}, err
	}

	if v, ok := present(in.Email); ok && v != existing.Email {
		other, err := s.repo.GetByEmail(ctx, v)
		switch {
		case err == nil && other.ID != existing.ID:
			return User{}, ErrDuplicateEmail
		case err != nil && !errors.Is(err, ErrNotFound):
			return User{}, err
		}
		existing.Email = v
	}
	if v, ok := present(in.FirstName); ok {
		existing.FirstName = v
	}
	if v, ok := present(in.LastName); ok {
		existing.LastName = v
	}
	if v, ok := present(in.Address); ok {
		existing.Address = v
	}
	if v, ok := present(in.PhoneNumber); ok {
		existing.PhoneNumber = v
	}
	if v, ok := present(in.Password); ok {
		if err := checkPassword(v); err != nil {
			return User{}, err
		}
		hashed, err := s.hash(v)
		if err != nil {
			return User{}, err
		}
		existing.Password = hashed
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return User{}, err
	}
	return updated.Sanitize(), nil
}

// ListUsers returns every non-admin account. Only admins may call it.
func (s *Service) ListUsers(ctx context.Context, callerID int) ([]User, error) {
	caller, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, ErrListForbidden
	}

	users, err := s.repo.ListByRole(ctx, RoleUser)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Sanitize()
	}
	return users, nil
}

// DeleteUser removes a non-admin account. Admin accounts, including the
// caller's own, cannot be removed this way.
func (s *Service) DeleteUser(ctx context.Context, callerID, targetID int) error {
	caller, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return ErrDeleteForbidden
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTargetNotFound
		}
		return err
	}
	if target.IsAdmin() {
		return ErrAdminProtected
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTargetNotFound
		}
		return err
	}
	return nil
}

// AttachFiles stores the uploads and appends them to the caller's profile
// images in the order given.
func (s *Service) AttachFiles(ctx context.Context, callerID int, uploads []Upload) (User, error) {
	existing, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return User{}, err
	}

	var total int64
	for _, u := range uploads {
		total += u.Size
	}
	if total > MaxUploadBytes {
		return User{}, ErrPayloadTooLarge
	}

	for _, u := range uploads {
		path, err := s.store(ctx, u)
		if err != nil {
			return User{}, fmt.Errorf("store %q: %w", u.Filename, err)
		}
		existing.ProfileImage = append(existing.ProfileImage, Attachment{
			Filename: u.Filename,
			FilePath: path,
		})
	}

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return User{}, err
	}
	return updated.Sanitize(), nil
}

func (s *Service) store(ctx context.Context, u Upload) (string, error) {
	rc, err := u.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.files.Save(ctx, u.Filename, rc, u.Size)
}

// EnsureAdmin creates the configured administrator unless an account with
// that email already exists. The bool reports whether a record was created.
func (s *Service) EnsureAdmin(ctx context.Context, seed RegisterInput) (User, bool, error) {
	if isBlank(seed.Email) || isBlank(seed.Password) {
		return User{}, false, ErrMissingFields
	}

	found, err := s.repo.GetByEmail(ctx, seed.Email)
	if err == nil {
		if !found.IsAdmin() {
			log.Warn().Str("email", seed.Email).Msg("admin seed email belongs to a regular user")
		}
		return found.Sanitize(), false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	if err := checkPassword(seed.Password); err != nil {
		return User{}, false, err
	}
	hashed, err := s.hash(seed.Password)
	if err != nil {
		return User{}, false, err
	}

	created, err := s.repo.Create(ctx, User{
		FirstName:    seed.FirstName,
		LastName:     seed.LastName,
		Email:        seed.Email,
		Password:     hashed,
		Role:         RoleAdmin,
		ProfileImage: []Attachment{},
	})
	if err != nil {
		return User{}, false, err
	}
	return created.Sanitize(), true, nil
}

func (s *Service) hash(plain string) (string, error) {
	hashed, err := s.hasher.Hash(plain)
	if errors.Is(err, password.ErrTooLong) {
		return "", ErrPasswordTooLong
	}
	return hashed, err
}

func checkPassword(plain string) error {
	if len(plain) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(plain) > password.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}

func present(v *string) (string, bool) {
	if v == nil || isBlank(*v) {
		return "", false
	}
	return *v, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
