package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"jobboard-backend/internal/database"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
)

var testDB *database.DBinstanceStruct
var testTeardown func(context.Context, ...testcontainers.TerminateOption) error

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	testTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := testTeardown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "teardown error: %v\n", err)
	}
	os.Exit(code)
}

type captureMailer struct {
	mu   sync.Mutex
	sent map[string]string
}

func (m *captureMailer) SendResetOTP(_ context.Context, to, otp string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = otp
	return nil
}

func (m *captureMailer) last(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[to]
}

func newHandler(t *testing.T) (*LocalAuthHandler, *captureMailer) {
	t.Helper()
	mail := &captureMailer{}
	bl := NewInMemoryBlacklistStore(t.Context(), 0)
	return NewLocalAuthHandler(testDB, NewTestTokenCodec(), bl, mail, database.TestHashCost, 10*time.Minute), mail
}

// callAs runs handler with an identity already resolved, as the auth gate leaves it.
func callAs(handler gin.HandlerFunc, user model.User, claims *Claims, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	b, _ := json.Marshal(body)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request, _ = http.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user", user)
	if claims != nil {
		c.Set("claims", claims)
	}
	handler(c)
	if last := c.Errors.Last(); last != nil && !c.Writer.Written() {
		ae := utilities.AsAppError(last.Err)
		c.JSON(ae.Status, utilities.ErrorResponse{Msg: ae.Message, Error: ae.Details})
	}
	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func signUp(t *testing.T, h *LocalAuthHandler, email, mobile string) model.User {
	t.Helper()
	rec, _, err := utilities.SimulateAPICall(h.SignUp, "/users", http.MethodPost, map[string]string{
		"firstName":     "Tester",
		"lastName":      "Person",
		"password":      "Passw0rd!",
		"email":         email,
		"recoveryEmail": "shared-recovery@example.com",
		"DOB":           "2000-02-29",
		"mobileNumber":  mobile,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var u model.User
	require.NoError(t, testDB.Where("email = ?", email).First(&u).Error)
	return u
}

func TestSignUp_StoresDigest(t *testing.T) {
	h, _ := newHandler(t)

	rec, resp, err := utilities.SimulateAPICall(h.SignUp, "/users", http.MethodPost, map[string]string{
		"firstName":    "Grace",
		"lastName":     "Hopper",
		"password":     "Cobol#1959",
		"email":        "grace@example.com",
		"DOB":          "1906-12-09",
		"mobileNumber": "0811111111",
		"role":         "company_HR",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "User added successfully", resp["msg"])

	user := resp["user"].(map[string]interface{})
	assert.NotContains(t, user, "password")
	assert.Equal(t, "GraceHopper", user["username"])
	assert.Equal(t, "company_HR", user["role"])
	assert.Equal(t, "offline", user["status"])

	var stored model.User
	require.NoError(t, testDB.Where("email = ?", "grace@example.com").First(&stored).Error)
	assert.NotEqual(t, "Cobol#1959", stored.Password)
	ok, err := utilities.VerifyPassword("Cobol#1959", stored.Password)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestSignUp_Duplicates(t *testing.T) {
	h, _ := newHandler(t)

	for name, body := range map[string]map[string]string{
		"email":  {"email": database.TestUser1.Email, "mobileNumber": "0822222222"},
		"mobile": {"email": "fresh-mobile@example.com", "mobileNumber": database.TestUser1.MobileNumber},
	} {
		t.Run(name, func(t *testing.T) {
			body["firstName"], body["lastName"] = "Dupli", "Cate"
			body["password"], body["DOB"] = "Passw0rd!", "1999-01-01"

			rec, resp, err := utilities.SimulateAPICall(h.SignUp, "/users", http.MethodPost, body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusConflict, rec.Code)
			assert.Equal(t, "User already exists", resp["msg"])
		})
	}
}

func TestSignIn_AnyIdentifier(t *testing.T) {
	h, _ := newHandler(t)
	u := database.TestUser1

	for _, identifier := range []string{u.Email, u.RecoveryEmail, u.MobileNumber} {
		t.Run(identifier, func(t *testing.T) {
			rec, resp, err := utilities.SimulateAPICall(h.SignIn, "/users/signIn", http.MethodPost, map[string]string{
				"identifier": identifier,
				"password":   database.TestSeedPassword,
			})
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "done", resp["msg"])

			claims, err := h.Tokens.Verify(resp["token"].(string))
			require.NoError(t, err)
			assert.Equal(t, u.ID, claims.Subject)
			assert.Equal(t, model.RoleUser, claims.Role)
		})
	}

	var stored model.User
	require.NoError(t, testDB.First(&stored, "id = ?", u.ID).Error)
	assert.Equal(t, model.StatusOnline, stored.Status)
}

func TestSignIn_SharedRecoveryEmail(t *testing.T) {
	h, _ := newHandler(t)
	a := signUp(t, h, "shared-a@example.com", "0833333331")
	b := signUp(t, h, "shared-b@example.com", "0833333332")

	newDigest, err := utilities.HashPassword("Other#Pass2", database.TestHashCost)
	require.NoError(t, err)
	require.NoError(t, testDB.Model(&b).Update("password", newDigest).Error)

	rec, resp, err := utilities.SimulateAPICall(h.SignIn, "/users/signIn", http.MethodPost, map[string]string{
		"identifier": "shared-recovery@example.com",
		"password":   "Other#Pass2",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	claims, err := h.Tokens.Verify(resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, b.ID, claims.Subject)
	assert.NotEqual(t, a.ID, claims.Subject)
}

func TestSignIn_Failures(t *testing.T) {
	h, _ := newHandler(t)
	u := signUp(t, h, "wrongpass@example.com", "0844444444")

	rec, resp, err := utilities.SimulateAPICall(h.SignIn, "/users/signIn", http.MethodPost, map[string]string{
		"identifier": u.Email,
		"password":   "Wr0ng!Pass",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid Password", resp["msg"])

	var stored model.User
	require.NoError(t, testDB.First(&stored, "id = ?", u.ID).Error)
	assert.Equal(t, model.StatusOffline, stored.Status)

	rec, resp, err = utilities.SimulateAPICall(h.SignIn, "/users/signIn", http.MethodPost, map[string]string{
		"identifier": "nobody@example.com",
		"password":   "Passw0rd!",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User Not Found", resp["msg"])
}

func TestSignOut(t *testing.T) {
	h, _ := newHandler(t)
	u := signUp(t, h, "signout@example.com", "0855555555")

	token, err := GetAccessToken(t, testDB, h.Tokens, u.Email, "Passw0rd!")
	require.NoError(t, err)
	claims, err := h.Tokens.Verify(token)
	require.NoError(t, err)

	rec, resp := callAs(h.SignOut, u, claims, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "done", resp["msg"])

	revoked, err := h.Blacklist.IsBlacklisted(t.Context(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	var stored model.User
	require.NoError(t, testDB.First(&stored, "id = ?", u.ID).Error)
	assert.Equal(t, model.StatusOffline, stored.Status)

	rec, _ = callAs(h.SignOut, u, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword(t *testing.T) {
	h, _ := newHandler(t)
	u := signUp(t, h, "changer@example.com", "0866666666")

	rec, resp := callAs(h.ChangePassword, u, nil, map[string]string{
		"currentPassword": "Wr0ng!Pass",
		"newPassword":     "N3w!Password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid Password", resp["msg"])

	rec, resp = callAs(h.ChangePassword, u, nil, map[string]string{
		"currentPassword": "Passw0rd!",
		"newPassword":     "N3w!Password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "done", resp["msg"])

	var stored model.User
	require.NoError(t, testDB.First(&stored, "id = ?", u.ID).Error)
	require.NotNil(t, stored.PasswordChangedAt)
	ok, err := utilities.VerifyPassword("N3w!Password", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	claims, err := h.Tokens.Verify(resp["token"].(string))
	require.NoError(t, err)
	assert.False(t, claims.IssuedBefore(*stored.PasswordChangedAt))

	// the stale identity no longer matches the stored digest
	rec, _ = callAs(h.ChangePassword, u, nil, map[string]string{
		"currentPassword": "Passw0rd!",
		"newPassword":     "An0ther!Pass",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPasswordReset_RoundTrip(t *testing.T) {
	h, mail := newHandler(t)
	u := signUp(t, h, "forgetful@example.com", "0877777777")

	rec, resp, err := utilities.SimulateAPICall(h.RequestPasswordReset, "/users/request-Password-Reset", http.MethodPost,
		map[string]string{"email": u.Email})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "OTP sent successfully", resp["msg"])

	otp := mail.last(u.Email)
	assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), otp)

	var stored model.User
	require.NoError(t, testDB.First(&stored, "id = ?", u.ID).Error)
	require.NotNil(t, stored.ResetPasswordOTP)
	assert.NotEqual(t, otp, *stored.ResetPasswordOTP)

	verify := map[string]string{"email": u.Email, "otp": otp, "newPassword": "Reset#Pass1"}
	rec, resp, err = utilities.SimulateAPICall(h.VerifyNewPassword, "/users/verifyNewPass", http.MethodPost, verify)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Password reset successfully", resp["msg"])

	rec, resp, err = utilities.SimulateAPICall(h.VerifyNewPassword, "/users/verifyNewPass", http.MethodPost, verify)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP", resp["msg"])

	token, err := GetAccessToken(t, testDB, h.Tokens, u.Email, "Reset#Pass1")
	require.NoError(t, err)

	require.NoError(t, testDB.First(&stored, "id = ?", u.ID).Error)
	require.NotNil(t, stored.PasswordChangedAt)
	// a sign-in right after the reset must survive the auth gate
	claims, err := h.Tokens.Verify(token)
	require.NoError(t, err)
	assert.False(t, claims.IssuedBefore(*stored.PasswordChangedAt))
	assert.Nil(t, stored.ResetPasswordOTP)
	assert.Nil(t, stored.ResetPasswordOTPExpires)
}

func TestPasswordReset_ExpiredAndWrongCode(t *testing.T) {
	h, mail := newHandler(t)
	u := signUp(t, h, "expired@example.com", "0888888888")

	h.OTPTTL = -time.Minute
	rec, _, err := utilities.SimulateAPICall(h.RequestPasswordReset, "/users/request-Password-Reset", http.MethodPost,
		map[string]string{"email": u.Email})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp, err := utilities.SimulateAPICall(h.VerifyNewPassword, "/users/verifyNewPass", http.MethodPost,
		map[string]string{"email": u.Email, "otp": mail.last(u.Email), "newPassword": "Reset#Pass1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired OTP", resp["msg"])

	h.OTPTTL = 10 * time.Minute
	_, _, err = utilities.SimulateAPICall(h.RequestPasswordReset, "/users/request-Password-Reset", http.MethodPost,
		map[string]string{"email": u.Email})
	require.NoError(t, err)
	wrong := "100000"
	if mail.last(u.Email) == wrong {
		wrong = "100001"
	}
	rec, _, err = utilities.SimulateAPICall(h.VerifyNewPassword, "/users/verifyNewPass", http.MethodPost,
		map[string]string{"email": u.Email, "otp": wrong, "newPassword": "Reset#Pass1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	h, _ := newHandler(t)
	rec, resp, err := utilities.SimulateAPICall(h.RequestPasswordReset, "/users/request-Password-Reset", http.MethodPost,
		map[string]string{"email": "ghost@example.com"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found or not authorized", resp["msg"])
}

func TestNewOTP(t *testing.T) {
	seen := map[string]bool{}
	for range 50 {
		otp, err := NewOTP()
		require.NoError(t, err)
		assert.Len(t, otp, 6)
		assert.NotEqual(t, byte('0'), otp[0])
		seen[otp] = true
	}
	assert.Greater(t, len(seen), 1)
}
