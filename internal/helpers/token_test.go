package helpers

import (
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKID = "test-kid"

var testSecret = []byte("entcal-test-secret")

func testValidator() *JWKSValidator {
	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		testKID: keyfunc.NewGivenHMAC(testSecret, keyfunc.GivenKeyOptions{Algorithm: jwt.SigningMethodHS256.Alg()}),
	})
	return NewKeyfuncValidator(jwks)
}

func signToken(t *testing.T, kid string, secret []byte, claims *CustomClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestJWKSValidator_Validate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	valid := &CustomClaims{
		Role:  "authenticated",
		Email: "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2f1d6b7e-7a59-4d8f-9c1e-2b5f8d3c4a10",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	expired := &CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "2f1d6b7e-7a59-4d8f-9c1e-2b5f8d3c4a10",
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	anonymous := &CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: signToken(t, testKID, testSecret, valid)},
		{name: "expired", token: signToken(t, testKID, testSecret, expired), wantErr: true},
		{name: "wrong secret", token: signToken(t, testKID, []byte("other"), valid), wantErr: true},
		{name: "unknown kid", token: signToken(t, "rotated", testSecret, valid), wantErr: true},
		{name: "no subject", token: signToken(t, testKID, testSecret, anonymous), wantErr: true},
		{name: "empty", token: "", wantErr: true},
		{name: "garbage", token: "not.a.jwt", wantErr: true},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := v.Validate(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", claims.Email)
			assert.Equal(t, valid.Subject, claims.Subject)
		})
	}
}

func TestJWKSURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://abc.supabase.co/auth/v1/.well-known/jwks.json", JWKSURL("https://abc.supabase.co/"))
}
