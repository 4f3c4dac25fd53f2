package site

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) List(ctx context.Context) ([]Site, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Site), args.Error(1)
}

func TestMatchClientEmail(t *testing.T) {
	sites := []Site{
		{ID: "site-1", ClientEmail: "client@test.com"},
		{ID: "site-2", ClientEmail2: "CLIENT@test.com"},
		{ID: "site-3", ClientEmail: "other@test.com", ClientEmail3: "  Client@Test.com "},
		{ID: "site-4", ClientEmail: "client@test.com", ClientEmail2: "client@test.com"},
		{ID: "site-5", ClientEmail: "other@test.com"},
		{ID: "", ClientEmail: "client@test.com"},
	}

	tests := []struct {
		name  string
		email string
		want  []string
	}{
		{name: "all fields and case insensitive", email: "client@test.com", want: []string{"site-1", "site-2", "site-3", "site-4"}},
		{name: "normalizes the candidate", email: "  CLIENT@TEST.COM", want: []string{"site-1", "site-2", "site-3", "site-4"}},
		{name: "single match", email: "other@test.com", want: []string{"site-3", "site-5"}},
		{name: "no match", email: "nobody@test.com", want: nil},
		{name: "empty email never matches blank fields", email: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchClientEmail(sites, tt.email))
		})
	}
}

func TestMatchClientEmail_DuplicateSiteIDs(t *testing.T) {
	sites := []Site{
		{ID: "a", ClientEmail: "x@y.com"},
		{ID: "a", ClientEmail3: "x@y.com"},
	}
	assert.Equal(t, []string{"a"}, MatchClientEmail(sites, "x@y.com"))
}

func TestScanForEmail(t *testing.T) {
	ctx := context.Background()

	dir := new(MockDirectory)
	dir.On("List", ctx).Return([]Site{{ID: "s1", ClientEmail: "x@y.com"}}, nil).Once()
	ids, err := ScanForEmail(ctx, dir, "X@y.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
	dir.AssertExpectations(t)

	failing := new(MockDirectory)
	failing.On("List", ctx).Return(nil, errors.New("unavailable")).Once()
	_, err = ScanForEmail(ctx, failing, "x@y.com")
	assert.Error(t, err)
}

func TestFilterByIDs(t *testing.T) {
	sites := []Site{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := FilterByIDs(sites, []string{"c", "missing", "a"})
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestSite_Summary(t *testing.T) {
	s := Site{ID: "abc", Nom: "Rénovation Maison Dupont"}
	assert.Equal(t, Summary{ID: "abc", Nom: "Rénovation Maison Dupont", Slug: "renovation-maison-dupont"}, s.Summary())
	assert.Equal(t, "abc", Site{ID: "abc"}.Summary().Slug)
}
