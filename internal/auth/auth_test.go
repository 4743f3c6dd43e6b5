package auth

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Verify(t *testing.T) {
	hash, err := HashPassword("Password1!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	assert.True(t, VerifyPassword(hash, "Password1!"))
	assert.False(t, VerifyPassword(hash, "Password2!"))
	assert.False(t, VerifyPassword("not-a-hash", "Password1!"))
	assert.False(t, VerifyPassword("", ""))
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("a", maxPasswordLength+1))
	assert.Error(t, err)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword("Password1!")
	require.NoError(t, err)
	b, err := HashPassword("Password1!")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, KeySize)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.key"), []byte("abc"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}

func newTestTokenService(t *testing.T, d time.Duration) *TokenService {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	s, err := NewTokenService(key, d)
	require.NoError(t, err)
	return s
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTestTokenService(t, time.Hour)
	user := &domain.User{Record: domain.Record{ID: "usr-1"}, Email: "ed@test", Role: domain.RoleEditor}

	token, expires, err := s.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := s.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, "usr-1", claims.Subject)
	assert.Equal(t, "ed@test", claims.Email)
	assert.Equal(t, domain.RoleEditor, claims.Role)
}

func TestTokenService_Expired(t *testing.T) {
	s := newTestTokenService(t, time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := s.GenerateAccessToken(&domain.User{Record: domain.Record{ID: "usr-1"}})
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_WrongKey(t *testing.T) {
	token, _, err := newTestTokenService(t, time.Hour).GenerateAccessToken(&domain.User{Record: domain.Record{ID: "usr-1"}})
	require.NoError(t, err)

	_, err = newTestTokenService(t, time.Hour).VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)
}
