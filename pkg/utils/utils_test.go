package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISOTime(t *testing.T) {
	want := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2025-01-10T00:00:00Z",
		"2025-01-10T00:00:00.000Z",
		"2025-01-10T02:00:00+02:00",
		"2025-01-10T00:00Z",
		"2025-01-10T02:00+02:00",
		"2025-01-10T02:00:00+0200",
		"2025-01-10T02:00+0200",
		"2025-01-10T00:00:00",
		"2025-01-10T00:00",
		"2025-01-10",
		"  2025-01-10  ",
	} {
		got, err := ParseISOTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	for _, in := range []string{"", "tomorrow", "2025-13-01", "10/01/2025"} {
		_, err := ParseISOTime(in)
		assert.Error(t, err, in)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateJWT("user-1", "a@b.c", "superadmin", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, &Claims{UserID: "user-1", Email: "a@b.c", Role: "superadmin"}, claims)

	expired, err := GenerateJWT("user-1", "a@b.c", "user", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	SetSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestExtractClaims(t *testing.T) {
	SetSecret("test-secret")
	token, err := GenerateJWT("user-2", "", "user", time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = ExtractClaims(r)
	assert.ErrorIs(t, err, ErrNoToken)

	r.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	claims, err := ExtractClaims(r)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	claims, err = ExtractClaims(r)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)
}

func TestWriteEnvelopes(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, "created", Envelope{"adRequest": map[string]string{"id": "1"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, "1", body["adRequest"].(map[string]interface{})["id"])

	rec = httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "ad request not found")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "ad request not found", body["message"])
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	var dst struct{ Message string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Empty(t, dst.Message)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "hi", dst.Message)
}
