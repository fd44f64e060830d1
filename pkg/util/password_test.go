package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	for _, password := range []string{"demo1234", "", "긴-비밀번호-with-special-chars!@#$%^&*()"} {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)
		assert.Contains(t, hash, "$2a$")
		assert.True(t, IsHashed(hash))
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// 한글은 글자당 3바이트라 25자면 넘는다
	_, err = HashPassword(strings.Repeat("가", 25))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPassword(t *testing.T) {
	password := "admin1234"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name           string
		hashedPassword string
		password       string
		want           bool
	}{
		{name: "Correct password", hashedPassword: hash, password: password, want: true},
		{name: "Incorrect password", hashedPassword: hash, password: "admin12345", want: false},
		{name: "Empty password", hashedPassword: hash, password: "", want: false},
		{name: "Plaintext stored value", hashedPassword: "admin1234", password: password, want: false},
		{name: "Missing hash", hashedPassword: "", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hashedPassword, tt.password))
		})
	}
}

func TestHashPasswordUsesSalt(t *testing.T) {
	hash1, err := HashPassword("demo1234")
	require.NoError(t, err)
	hash2, err := HashPassword("demo1234")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, VerifyPassword(hash1, "demo1234"))
	assert.True(t, VerifyPassword(hash2, "demo1234"))
}

func TestIsHashed(t *testing.T) {
	assert.False(t, IsHashed("demo1234"))
	assert.False(t, IsHashed(""))
	assert.False(t, IsHashed("$2a$short"))
}
