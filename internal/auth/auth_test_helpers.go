package auth

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"jobboard-backend/internal/config"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/utilities"
)

// NewTestTokenCodec returns a codec with a fixed secret and the default transport.
func NewTestTokenCodec() *TokenCodec {
	return NewTokenCodec(config.Token{
		Secret: "test-secret",
		Issuer: "jobboard",
		TTL:    time.Hour,
		Header: "token",
		Marker: "viri__",
	})
}

// GetAccessToken is a helper function to obtain an access token for a user by simulating a sign-in API call.
// It takes the testing object, database connection, codec, identifier, and password as parameters.
// It returns the access token as a string and any error encountered during the process.
func GetAccessToken(
	t *testing.T,
	db *database.DBinstanceStruct,
	tokens *TokenCodec,
	identifier string,
	password string,
) (string, error) {
	t.Helper()
	handler := NewLocalAuthHandler(db, tokens, nil, nil, database.TestHashCost, time.Minute)
	rec, resp, err := utilities.SimulateAPICall(handler.SignIn, "/users/signIn", http.MethodPost, map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return "", err
	}
	if rec.Code != http.StatusOK {
		return "", fmt.Errorf("sign in failed: status %d, body: %s", rec.Code, rec.Body.String())
	}
	token, ok := resp["token"].(string)
	if !ok {
		return "", fmt.Errorf("sign in failed: no token in response: %s", rec.Body.String())
	}
	return token, nil
}
