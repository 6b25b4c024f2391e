package address

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	s := NewService(NewInMemoryRepository(nil))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return s
}

func home() Input {
	return Input{Title: "Home", FullName: "Ayse Yilmaz", Line1: "Bagdat Cd. 10", City: "Istanbul", Country: "tr"}
}

func TestCreate_FirstAddressIsDefault(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	first, err := s.Create(ctx, "ayse@example.com", home())
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "TR", first.Country)

	second, err := s.Create(ctx, "ayse@example.com", Input{FullName: "Ayse Yilmaz", Line1: "Work 1", City: "Ankara", Country: "TR"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestSetDefault_KeepsSingleDefault(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	owner := "ayse@example.com"

	first, _ := s.Create(ctx, owner, home())
	second, _ := s.Create(ctx, owner, Input{FullName: "Ayse Yilmaz", Line1: "Work 1", City: "Ankara", Country: "TR"})

	_, err := s.SetDefault(ctx, owner, second.ID)
	require.NoError(t, err)

	list, err := s.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestOwnershipIsEnforced(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	a, err := s.Create(ctx, "ayse@example.com", home())
	require.NoError(t, err)

	_, err = s.Get(ctx, "mallory@example.com", a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, "mallory@example.com", a.ID, home())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "mallory@example.com", a.ID), ErrNotFound)

	_, err = s.Get(ctx, "AYSE@example.com", a.ID)
	assert.NoError(t, err)
}

func TestDeleteDefault_PromotesNewest(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	owner := "ayse@example.com"

	first, _ := s.Create(ctx, owner, home())
	_, _ = s.Create(ctx, owner, Input{FullName: "A", Line1: "Old", City: "Izmir", Country: "TR"})
	newest, _ := s.Create(ctx, owner, Input{FullName: "A", Line1: "New", City: "Bursa", Country: "TR"})

	require.NoError(t, s.Delete(ctx, owner, first.ID))

	list, err := s.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newest.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
}

func TestValidation(t *testing.T) {
	s := newTestService()

	_, err := s.Create(context.Background(), "ayse@example.com", Input{Country: "Turkey"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "fullName")
	assert.Contains(t, ve.Fields, "line1")
	assert.Contains(t, ve.Fields, "city")
	assert.Contains(t, ve.Fields, "country")
}
