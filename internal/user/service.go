package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(repo Repository, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl, now: time.Now}
}

type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password"`
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = sanitizeUser(users[i])
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(u), nil
}

// Register creates a customer account. Admin accounts are only provisioned
// through EnsureAdmin or SetRole.
func (s *Service) Register(ctx context.Context, in Registration) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	fields := map[string]string{}
	if !isBareAddress(in.Email) {
		fields["email"] = "a valid email is required"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	}
	if strings.TrimSpace(in.FirstName) == "" {
		fields["firstName"] = "first name is required"
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields["lastName"] = "last name is required"
	}
	if len(fields) > 0 {
		return User{}, &ValidationError{Fields: fields}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	created, err := s.repo.Create(ctx, User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(created), nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return sanitizeUser(u), nil
}

// IssueToken signs an HS256 token carrying the claims read back by
// GetUserIDFromCtx, GetEmailFromCtx and RequireAdmin.
func (s *Service) IssueToken(u User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
		"exp":     s.now().Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	u.Password = ""
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return User{}, &ValidationError{Fields: map[string]string{"password": "password must be at least 8 characters"}}
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.Password = string(hashed)
	}
	if u.FirstName == "" || u.LastName == "" {
		return User{}, &ValidationError{Fields: map[string]string{"name": "first and last name are required"}}
	}
	u.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(updated), nil
}

func (s *Service) SetRole(ctx context.Context, id string, role Role) (User, error) {
	if role != RoleCustomer && role != RoleAdmin {
		return User{}, &ValidationError{Fields: map[string]string{"role": "role must be customer or admin"}}
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Role = role
	u.Password = ""
	u.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(updated), nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// An existing account with that email is promoted.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == RoleAdmin {
			return nil
		}
		_, err = s.SetRole(ctx, existing.ID, RoleAdmin)
		return err
	case !errors.Is(err, ErrNotFound):
		return err
	}

	created, err := s.Register(ctx, Registration{Email: email, Password: password, FirstName: "Store", LastName: "Admin"})
	if err != nil {
		return err
	}
	if _, err := s.SetRole(ctx, created.ID, RoleAdmin); err != nil {
		return err
	}
	zap.L().Info("bootstrap admin created", zap.String("email", created.Email))
	return nil
}

// isBareAddress accepts a plain addr-spec only; display names and angle
// brackets are rejected so the stored value is usable as an SMTP recipient.
func isBareAddress(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
