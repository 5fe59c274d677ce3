package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/kareemeredaze/maitre-seo/internal/identity"
)

func TestGatewayRoutesRejectRequestsWithoutSession(t *testing.T) {
	environment := newTestEnvironment(t)

	testCases := []struct {
		name   string
		method string
		target string
	}{
		{name: "profile", method: http.MethodGet, target: "/api/profile"},
		{name: "profile update", method: http.MethodPatch, target: "/api/profile"},
		{name: "campaigns", method: http.MethodGet, target: "/api/campaigns"},
		{name: "campaign detail", method: http.MethodGet, target: "/api/campaigns/some-id"},
		{name: "invoices", method: http.MethodGet, target: "/api/invoices"},
		{name: "activity", method: http.MethodGet, target: "/api/activity"},
		{name: "password change", method: http.MethodPost, target: "/api/security/password"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(testingT *testing.T) {
			recorder := environment.perform(testingT, testCase.method, testCase.target, requestOptions{})
			require.Equal(testingT, http.StatusUnauthorized, recorder.Code)
			payload := decodeJSONBody(testingT, recorder)
			require.Equal(testingT, "unauthorized", payload["error"])
		})
	}
}

func TestGatewayRejectsSessionWithExpiredToken(t *testing.T) {
	environment := newTestEnvironment(t)

	claims := jwt.MapClaims{
		"sub":   testUserID,
		"email": testUserEmail,
		"aud":   "authenticated",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	}
	expiredToken, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testTokenSecret))
	require.NoError(t, signErr)

	recorder := httptest.NewRecorder()
	ginContext, _ := gin.CreateTestContext(recorder)
	ginContext.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, environment.sessionManager.Establish(ginContext, identity.Session{AccessToken: expiredToken}))
	cookies := recorder.Result().Cookies()
	require.NotEmpty(t, cookies)

	profileRecorder := environment.perform(t, http.MethodGet, "/api/profile", requestOptions{cookie: cookies[0]})
	require.Equal(t, http.StatusUnauthorized, profileRecorder.Code)
}

func TestGatewayRejectsSessionWithForgedSignature(t *testing.T) {
	environment := newTestEnvironment(t)

	claims := jwt.MapClaims{
		"sub":   testUserID,
		"email": testUserEmail,
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	forgedToken, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("attacker-secret"))
	require.NoError(t, signErr)

	recorder := httptest.NewRecorder()
	ginContext, _ := gin.CreateTestContext(recorder)
	ginContext.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, environment.sessionManager.Establish(ginContext, identity.Session{AccessToken: forgedToken}))
	cookies := recorder.Result().Cookies()
	require.NotEmpty(t, cookies)

	profileRecorder := environment.perform(t, http.MethodGet, "/api/profile", requestOptions{cookie: cookies[0]})
	require.Equal(t, http.StatusUnauthorized, profileRecorder.Code)
}

func TestRequireAuthenticatedWebRedirectsToLogin(t *testing.T) {
	environment := newTestEnvironment(t)

	tokenVerifier, verifierErr := identity.NewTokenVerifier(testTokenSecret)
	require.NoError(t, verifierErr)
	authManager := NewAuthManager(environment.sessionManager, tokenVerifier, nil)

	router := gin.New()
	router.GET("/dashboard", authManager.RequireAuthenticatedWeb(), func(context *gin.Context) {
		context.String(http.StatusOK, "ok")
	})

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, "/login", recorder.Header().Get("Location"))
}

func TestNewSessionManagerRequiresSecret(t *testing.T) {
	_, sessionErr := NewSessionManager(SessionConfig{Secret: "   "})
	require.ErrorIs(t, sessionErr, ErrMissingSessionSecret)
}
