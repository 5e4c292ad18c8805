package store

import (
	"os"
	"testing"

	"fanhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "fanhub-test-*.db")
	require.NoError(t, err)
	tmpfile.Close()
	os.Remove(tmpfile.Name()) // SQLite recreates it

	s, err := New(tmpfile.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		os.Remove(tmpfile.Name())
	})
	return s
}

func TestSignInMarkerRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	addr := models.Address("0xAbCd000000000000000000000000000000000001")

	_, err := s.LastSignIn(addr)
	assert.ErrorIs(t, err, ErrNoMarker)

	require.NoError(t, s.SetLastSignIn(addr, "2026-08-31T10:00:00Z"))

	// Lookup is keyed on the normalized address.
	got, err := s.LastSignIn(addr.Normalize())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31T10:00:00Z", got)
}

func TestSignInMarkerOverwrite(t *testing.T) {
	s := setupTestStore(t)
	addr := models.Address("0xaa")

	require.NoError(t, s.SetLastSignIn(addr, "first"))
	require.NoError(t, s.SetLastSignIn(addr, "second"))

	got, err := s.LastSignIn(addr)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestClearLastSignIn(t *testing.T) {
	s := setupTestStore(t)
	addr := models.Address("0xaa")

	require.NoError(t, s.SetLastSignIn(addr, "marker"))
	require.NoError(t, s.ClearLastSignIn(addr))

	_, err := s.LastSignIn(addr)
	assert.ErrorIs(t, err, ErrNoMarker)

	// Clearing an absent marker is not an error.
	assert.NoError(t, s.ClearLastSignIn(addr))
}
