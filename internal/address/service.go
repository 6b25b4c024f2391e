package address

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Service provides the address book of a signed-in account.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

func (s *Service) List(ctx context.Context, owner string) ([]Address, error) {
	return s.repo.List(ctx, owner)
}

// Get returns ErrNotFound for addresses owned by someone else.
func (s *Service) Get(ctx context.Context, owner, id string) (Address, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Address{}, err
	}
	if !strings.EqualFold(a.OwnerEmail, owner) {
		return Address{}, ErrNotFound
	}
	return a, nil
}

// Create stores a new address. The first address of an owner is always the default.
func (s *Service) Create(ctx context.Context, owner string, in Input) (Address, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return Address{}, err
	}
	existing, err := s.repo.List(ctx, owner)
	if err != nil {
		return Address{}, err
	}

	now := s.now().UTC()
	a := apply(Address{
		ID:         uuid.NewString(),
		OwnerEmail: strings.ToLower(owner),
		CreatedAt:  now,
	}, in)
	a.IsDefault = in.IsDefault || len(existing) == 0
	a.UpdatedAt = now
	return s.repo.Create(ctx, a)
}

// Update replaces the fields of an owned address. Unsetting the default
// flag is ignored; pick another default instead.
func (s *Service) Update(ctx context.Context, owner, id string, in Input) (Address, error) {
	current, err := s.Get(ctx, owner, id)
	if err != nil {
		return Address{}, err
	}
	in = normalize(in)
	if err := validate(in); err != nil {
		return Address{}, err
	}
	a := apply(current, in)
	a.IsDefault = current.IsDefault || in.IsDefault
	a.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, a)
}

func (s *Service) SetDefault(ctx context.Context, owner, id string) (Address, error) {
	a, err := s.Get(ctx, owner, id)
	if err != nil {
		return Address{}, err
	}
	if a.IsDefault {
		return a, nil
	}
	a.IsDefault = true
	a.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, a)
}

// Delete removes an owned address. When the default goes, the most recent
// remaining address takes its place.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	a, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if !a.IsDefault {
		return nil
	}
	rest, err := s.repo.List(ctx, owner)
	if err != nil || len(rest) == 0 {
		return err
	}
	_, err = s.SetDefault(ctx, owner, rest[0].ID)
	return err
}

func apply(a Address, in Input) Address {
	a.Title = in.Title
	a.FullName = in.FullName
	a.Phone = in.Phone
	a.Line1 = in.Line1
	a.Line2 = in.Line2
	a.City = in.City
	a.District = in.District
	a.PostalCode = in.PostalCode
	a.Country = in.Country
	return a
}

func normalize(in Input) Input {
	in.Title = strings.TrimSpace(in.Title)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.Line2 = strings.TrimSpace(in.Line2)
	in.City = strings.TrimSpace(in.City)
	in.District = strings.TrimSpace(in.District)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	return in
}

func validate(in Input) error {
	fields := map[string]string{}
	if in.FullName == "" {
		fields["fullName"] = "is required"
	}
	if in.Line1 == "" {
		fields["line1"] = "is required"
	}
	if in.City == "" {
		fields["city"] = "is required"
	}
	if !isCountryCode(in.Country) {
		fields["country"] = "must be a two-letter ISO country code"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
