package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/config"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
	tu "jobboard-backend/internal/testutil"
)

var (
	testDB     *database.DBinstanceStruct
	testTokens = auth.NewTokenCodec(config.Token{
		Secret: "middleware-test-secret",
		Issuer: "jobboard",
		TTL:    time.Hour,
		Header: tu.TokenHeader,
		Marker: tu.TokenMarker,
	})
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
	os.Exit(code)
}

func issue(t *testing.T, u model.User) string {
	t.Helper()
	token, _, err := testTokens.Issue(u)
	require.NoError(t, err)
	return token
}

func checkUserHandler(c *gin.Context) {
	u, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, utilities.NewInternal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

func roleEngine(roles ...model.Role) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/protected", RequireAuth(testDB, testTokens), CheckRole(roles...), checkUserHandler)
	return r
}

func TestCheckRole_Allowed(t *testing.T) {
	engine := roleEngine(model.RoleCompanyHR)
	rec, resp := tu.MakeJSONRequest(nil, issue(t, database.TestHR1), engine, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, resp["ok"])
}

func TestCheckRole_AllowList(t *testing.T) {
	engine := roleEngine(model.RoleCompanyHR, model.RoleUser)
	for _, u := range []model.User{database.TestHR2, database.TestUser1} {
		rec, _ := tu.MakeJSONRequest(nil, issue(t, u), engine, "/protected", http.MethodGet)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s", u.Role)
	}
}

func TestCheckRole_Forbidden(t *testing.T) {
	engine := roleEngine(model.RoleCompanyHR)
	rec, resp := tu.MakeJSONRequest(nil, issue(t, database.TestUser1), engine, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not authorized", resp["msg"])
	assert.NotContains(t, resp, "user")
}

func TestCheckRole_WithoutAuthGate(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/protected", CheckRole(model.RoleUser), checkUserHandler)

	rec, resp := tu.MakeJSONRequest(nil, "", r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User information not provided", resp["msg"])
}

func TestJwtBlacklistCheck(t *testing.T) {
	store := auth.NewInMemoryBlacklistStore(t.Context(), time.Minute)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/protected", RequireAuth(testDB, testTokens), JwtBlacklistCheck(store), checkUserHandler)

	token, claims, err := testTokens.Issue(database.TestUser2)
	require.NoError(t, err)

	rec, _ := tu.MakeJSONRequest(nil, token, r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, store.AddToBlacklist(t.Context(), claims.ID, claims.ExpiresAt.Time))

	rec, resp := tu.MakeJSONRequest(nil, token, r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token", resp["msg"])

	// a fresh token for the same user is unaffected
	rec, _ = tu.MakeJSONRequest(nil, issue(t, database.TestUser2), r, "/protected", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorHandler_Shapes(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/validation", func(c *gin.Context) {
		utilities.Fail(c, utilities.NewValidationError([]string{`"a" is required`, `"b" is required`}))
	})
	r.GET("/plain", func(c *gin.Context) {
		utilities.Fail(c, fmt.Errorf("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"msg": "done"})
		_ = c.Error(fmt.Errorf("late"))
	})

	rec, resp := tu.MakeJSONRequest(nil, "", r, "/validation", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request", resp["msg"])
	assert.Equal(t, []string{`"a" is required`, `"b" is required`}, tu.Messages(resp))

	rec, resp = tu.MakeJSONRequest(nil, "", r, "/plain", http.MethodGet)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", resp["msg"])

	rec, resp = tu.MakeJSONRequest(nil, "", r, "/written", http.MethodGet)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "done", resp["msg"])
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/panic", func(*gin.Context) { panic("unexpected") })

	rec, resp := tu.MakeJSONRequest(nil, "", r, "/panic", http.MethodGet)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", resp["msg"])
}

func TestNotFound(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.NoRoute(NotFound)

	rec, resp := tu.MakeJSONRequest(nil, "", r, "/nowhere", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid URL /nowhere", resp["msg"])
}

func TestSafeHeader(t *testing.T) {
	r := gin.New()
	r.Use(SafeHeader())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), SizeLimit(16))
	r.POST("/upload", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			utilities.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	big := make([]byte, 16+int(multipartOverhead)+1)
	for i := range big {
		big[i] = 'a'
	}
	rec, resp := tu.MakeJSONRequest(gin.H{"data": string(big)}, "", r, "/upload", http.MethodPost)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.NotEmpty(t, resp["msg"])

	rec, _ = tu.MakeJSONRequest(gin.H{"a": 1}, "", r, "/upload", http.MethodPost)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetrics(t *testing.T) {
	RegisterMetrics(prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics())
	r.GET("/jobs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/jobs/:id", "200"))
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/jobs/:id", "200"))
	assert.Equal(t, float64(2), after-before)
}
