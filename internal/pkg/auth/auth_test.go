package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technexus/storefront-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "storefront-test"},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	id := uuid.New()

	token, err := m.GenerateAccessToken(id, "+255712345678")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "+255712345678", claims.Phone)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager(testConfig())
	token, err := m.GenerateAccessToken(uuid.New(), "+255712345678")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.ValidateAccessToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	token, err := NewJWTManager(other).GenerateAccessToken(uuid.New(), "+255712345678")
	require.NoError(t, err)

	_, err = NewJWTManager(testConfig()).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := NewJWTManager(testConfig()).ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}

func TestPasswordHashAndVerify(t *testing.T) {
	p := NewPasswordManager(testConfig())

	hash, err := p.HashPassword("secret1")
	require.NoError(t, err)
	assert.NoError(t, p.VerifyPassword("secret1", hash))
	assert.Error(t, p.VerifyPassword("secret2", hash))
}

func TestPasswordLength(t *testing.T) {
	p := NewPasswordManager(testConfig())

	_, err := p.HashPassword("12345")
	assert.ErrorContains(t, err, "at least 6")

	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, p.ValidatePassword(string(long)))
}

func TestComposePhone(t *testing.T) {
	tests := []struct {
		name                      string
		phone, countryCode, local string
		want                      string
	}{
		{"full number with spaces", "+255 712-345 678", "", "", "+255712345678"},
		{"missing plus", "255712345678", "", "", "+255712345678"},
		{"double zero prefix", "00255712345678", "", "", "+255712345678"},
		{"country code and local", "", "+255", "0712 345 678", "+255712345678"},
		{"country code wins over phone", "+1999", "255", "712345678", "+255712345678"},
		{"empty", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposePhone(tt.phone, tt.countryCode, tt.local))
		})
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("+255712345678"))
	assert.True(t, ValidPhone("+123456"))
	assert.False(t, ValidPhone("+12345"))
	assert.False(t, ValidPhone("255712345678"))
	assert.False(t, ValidPhone("+2557123456789012"))
}

func TestIsAllowlisted(t *testing.T) {
	allow := []string{"255684868946"}
	assert.True(t, IsAllowlisted("+255684868946", allow))
	assert.True(t, IsAllowlisted("+255 684 868 946", allow))
	assert.False(t, IsAllowlisted("+255684868947", allow))
	assert.False(t, IsAllowlisted("", allow))
}
