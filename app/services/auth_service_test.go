package services

import (
	"testing"

	"github.com/mkamalov/bazar/app/models"
	"github.com/mkamalov/bazar/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginVerifiesPassword(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db)

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	user := models.User{Username: "karim", Password: hash, Role: "user"}
	require.NoError(t, db.Create(&user).Error)

	var verr *ValidationError

	// Wrong password and unknown username both get the same generic error.
	_, _, err = svc.Login("karim", "wrong")
	require.ErrorAs(t, err, &verr)

	_, _, err = svc.Login("nobody", "s3cret")
	require.ErrorAs(t, err, &verr)

	got, token, err := svc.Login("karim", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token)
}

func TestContactChannelDetection(t *testing.T) {
	cases := map[string]string{
		"user@example.com":  "email",
		"seller@bazar.app":  "email",
		"+998901234567":     "phone",
		"998901234567":      "phone",
		"12345":             "",
		"not-an-address":    "",
		"missing@tld":       "",
		"":                  "",
		"+9989012345678a":   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, contactChannel(in), "contactChannel(%q)", in)
	}
}

func TestGenerateOTPShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
		seen[code] = true
	}
	// 50 draws from a million values should essentially never all collide.
	assert.Greater(t, len(seen), 1)
}

func TestOrderNumberShape(t *testing.T) {
	a := generateOrderNumber()
	b := generateOrderNumber()
	assert.Regexp(t, `^ORD-[0-9a-f]{12}$`, a)
	assert.NotEqual(t, a, b)
}
