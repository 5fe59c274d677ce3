package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kareemeredaze/maitre-seo/internal/identity"
	"github.com/kareemeredaze/maitre-seo/internal/testutil"
)

const (
	testSessionSecret = "test-session-secret"
	testTokenSecret   = "test-token-secret"
	testPublicBaseURL = "https://portal.example.com"

	testUserID      = "11111111-1111-4111-8111-111111111111"
	testOtherUserID = "22222222-2222-4222-8222-222222222222"
	testUserEmail   = "client@example.com"
)

// stubProvider records identity calls and returns scripted results.
type stubProvider struct {
	mutex sync.Mutex

	signInSession identity.Session
	signInErr     error
	signUpSession identity.Session
	signUpErr     error
	signOutErr    error
	resetErr      error
	updateErr     error

	signInCalls         int
	signUpCalls         int
	signOutCalls        int
	resetCalls          int
	updatePasswordCalls int
	lastResetRedirect   string
	lastNewPassword     string
	lastAccessToken     string
}

func (provider *stubProvider) SignIn(_ context.Context, _ string, _ string) (identity.Session, error) {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	provider.signInCalls++
	return provider.signInSession, provider.signInErr
}

func (provider *stubProvider) SignUp(_ context.Context, _ string, _ string, _ string) (identity.Session, error) {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	provider.signUpCalls++
	return provider.signUpSession, provider.signUpErr
}

func (provider *stubProvider) SignOut(_ context.Context, accessToken string) error {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	provider.signOutCalls++
	provider.lastAccessToken = accessToken
	return provider.signOutErr
}

func (provider *stubProvider) SendPasswordReset(_ context.Context, _ string, redirectURL string) error {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	provider.resetCalls++
	provider.lastResetRedirect = redirectURL
	return provider.resetErr
}

func (provider *stubProvider) UpdatePassword(_ context.Context, accessToken string, newPassword string) error {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	provider.updatePasswordCalls++
	provider.lastAccessToken = accessToken
	provider.lastNewPassword = newPassword
	return provider.updateErr
}

type testEnvironment struct {
	router         *gin.Engine
	database       *gorm.DB
	sessionManager *SessionManager
	provider       *stubProvider
}

func newTestEnvironment(testingT *testing.T) *testEnvironment {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewSQLiteTestDatabase(testingT).OpenMigratedDatabase(testingT)

	sessionManager, sessionErr := NewSessionManager(SessionConfig{Secret: testSessionSecret})
	require.NoError(testingT, sessionErr)

	tokenVerifier, verifierErr := identity.NewTokenVerifier(testTokenSecret)
	require.NoError(testingT, verifierErr)

	provider := &stubProvider{}
	logger := zap.NewNop()
	authManager := NewAuthManager(sessionManager, tokenVerifier, logger)
	activityRecorder := NewActivityRecorder(database, logger)

	authHandlers := NewAuthHandlers(database, provider, sessionManager, activityRecorder, logger, testPublicBaseURL)
	profileHandlers := NewProfileHandlers(database, logger, activityRecorder)
	campaignHandlers := NewCampaignHandlers(database, logger)
	invoiceHandlers := NewInvoiceHandlers(database, logger)
	activityHandlers := NewActivityHandlers(database, logger)
	securityHandlers := NewSecurityHandlers(provider, logger, activityRecorder)

	router := gin.New()
	router.POST("/api/auth/login", authHandlers.Login)
	router.POST("/api/auth/signup", authHandlers.Signup)
	router.POST("/api/auth/logout", authHandlers.Logout)
	router.POST("/api/auth/reset", authHandlers.RequestPasswordReset)

	apiGroup := router.Group("/api")
	apiGroup.Use(authManager.RequireAuthenticatedJSON())
	apiGroup.GET("/profile", profileHandlers.GetProfile)
	apiGroup.PATCH("/profile", profileHandlers.UpdateProfile)
	apiGroup.GET("/campaigns", campaignHandlers.ListCampaigns)
	apiGroup.GET("/campaigns/:id", campaignHandlers.CampaignDetail)
	apiGroup.GET("/invoices", invoiceHandlers.ListInvoices)
	apiGroup.GET("/activity", activityHandlers.ListRecentActivity)
	apiGroup.POST("/security/password", securityHandlers.ChangePassword)

	return &testEnvironment{
		router:         router,
		database:       database,
		sessionManager: sessionManager,
		provider:       provider,
	}
}

func signedAccessToken(testingT *testing.T, userID string, email string) string {
	testingT.Helper()

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, signErr := token.SignedString([]byte(testTokenSecret))
	require.NoError(testingT, signErr)
	return signedToken
}

func (environment *testEnvironment) sessionCookie(testingT *testing.T, userID string, email string) *http.Cookie {
	testingT.Helper()

	recorder := httptest.NewRecorder()
	ginContext, _ := gin.CreateTestContext(recorder)
	ginContext.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	providerSession := identity.Session{AccessToken: signedAccessToken(testingT, userID, email)}
	require.NoError(testingT, environment.sessionManager.Establish(ginContext, providerSession))

	cookies := recorder.Result().Cookies()
	require.NotEmpty(testingT, cookies)
	return cookies[0]
}

type requestOptions struct {
	cookie *http.Cookie
	body   any
}

func (environment *testEnvironment) perform(testingT *testing.T, method string, target string, options requestOptions) *httptest.ResponseRecorder {
	testingT.Helper()

	var bodyReader *bytes.Reader
	if options.body != nil {
		encodedBody, encodeErr := json.Marshal(options.body)
		require.NoError(testingT, encodeErr)
		bodyReader = bytes.NewReader(encodedBody)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, target, bodyReader)
	if options.body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if options.cookie != nil {
		request.AddCookie(options.cookie)
	}

	recorder := httptest.NewRecorder()
	environment.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSONBody(testingT *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	testingT.Helper()

	var payload map[string]any
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func decodeJSONList(testingT *testing.T, recorder *httptest.ResponseRecorder) []map[string]any {
	testingT.Helper()

	var payload []map[string]any
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}
