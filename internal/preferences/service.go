package preferences

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nowiht/storefront-backend/internal/sizing"
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

// Get returns the stored preferences or the defaults when none are saved.
func (s *Service) Get(ctx context.Context, owner string) (Preferences, error) {
	p, err := s.repo.Get(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return Defaults(strings.ToLower(owner)), nil
	}
	return p, err
}

func (s *Service) Update(ctx context.Context, owner string, in Update) (Preferences, error) {
	p, err := s.Get(ctx, owner)
	if err != nil {
		return Preferences{}, err
	}

	fields := map[string]string{}
	if in.Language != nil {
		switch l := Language(strings.ToLower(strings.TrimSpace(*in.Language))); l {
		case LanguageEN, LanguageTR:
			p.Language = l
		default:
			fields["language"] = "must be one of en, tr"
		}
	}
	if in.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*in.Currency))
		if currencies[c] {
			p.Currency = c
		} else {
			fields["currency"] = "must be one of TRY, EUR, USD, GBP"
		}
	}
	if in.Newsletter != nil {
		p.Newsletter = *in.Newsletter
	}
	if in.SMSNotifications != nil {
		p.SMSNotifications = *in.SMSNotifications
	}
	if in.PreferredSizes != nil {
		list, ok := normalizeSizes(*in.PreferredSizes)
		if ok {
			p.PreferredSizes = list
		} else {
			fields["preferredSizes"] = "contains an unknown size"
		}
	}
	if in.FitPreference != nil {
		if fit, ok := sizing.ParseFit(*in.FitPreference); ok {
			p.FitPreference = fit
		} else {
			fields["fitPreference"] = "must be one of tight, regular, loose"
		}
	}
	if len(fields) > 0 {
		return Preferences{}, &ValidationError{Fields: fields}
	}

	p.OwnerEmail = strings.ToLower(owner)
	p.UpdatedAt = s.now().UTC()
	return s.repo.Upsert(ctx, p)
}

// normalizeSizes upper-cases and de-duplicates size labels, keeping order.
func normalizeSizes(in []string) ([]string, bool) {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, raw := range in {
		s := strings.ToUpper(strings.TrimSpace(raw))
		if !sizes[s] {
			return nil, false
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, true
}
