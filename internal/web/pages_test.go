package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kareemeredaze/maitre-seo/internal/api"
	"github.com/kareemeredaze/maitre-seo/internal/model"
	"github.com/kareemeredaze/maitre-seo/internal/testutil"
)

type stubUserProvider struct {
	currentUser *api.CurrentUser
}

func (provider *stubUserProvider) CurrentUser(_ *gin.Context) (*api.CurrentUser, bool) {
	if provider.currentUser == nil {
		return nil, false
	}
	return provider.currentUser, true
}

func newPageTestRouter(testingT *testing.T, provider CurrentUserProvider) (*gin.Engine, *PageHandlers) {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.NewSQLiteTestDatabase(testingT).OpenMigratedDatabase(testingT)
	handlers := NewPageHandlers(database, zap.NewNop(), provider)

	router := gin.New()
	router.GET("/", handlers.RenderHomePage)
	router.GET("/pricing", handlers.RenderPricingPage)
	router.GET("/contact", handlers.RenderContactPage)
	router.POST("/contact", handlers.SubmitContactForm)
	router.GET("/login", handlers.RenderLoginPage)
	router.GET("/signup", handlers.RenderSignupPage)
	router.GET("/reset-password", handlers.RenderResetPasswordPage)
	router.GET("/update-password", handlers.RenderUpdatePasswordPage)
	router.GET("/dashboard", handlers.RenderDashboardPage)

	return router, handlers
}

func renderPath(testingT *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	testingT.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestHomePageShowsAnonymousNavigation(t *testing.T) {
	router, _ := newPageTestRouter(t, &stubUserProvider{})

	recorder := renderPath(t, router, "/")

	require.Equal(t, http.StatusOK, recorder.Code)
	pageBody := recorder.Body.String()
	require.Contains(t, pageBody, "Des backlinks qui font monter vos positions")
	require.Contains(t, pageBody, `<a href="/login">Connexion</a>`)
	require.NotContains(t, pageBody, "Mon espace")
}

func TestHomePageShowsDashboardLinkForAuthenticatedVisitors(t *testing.T) {
	provider := &stubUserProvider{currentUser: &api.CurrentUser{
		ID:    "27c8b5d4-1f0a-4d77-9f53-8a1f2c6de901",
		Email: "client@example.com",
	}}
	router, _ := newPageTestRouter(t, provider)

	recorder := renderPath(t, router, "/")

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `<a href="/dashboard">Mon espace</a>`)
}

func TestPricingPageListsEveryFormula(t *testing.T) {
	router, _ := newPageTestRouter(t, &stubUserProvider{})

	recorder := renderPath(t, router, "/pricing")

	require.Equal(t, http.StatusOK, recorder.Code)
	pageBody := recorder.Body.String()
	for _, plan := range defaultPricingPlans {
		require.Contains(t, pageBody, plan.Name)
		require.Contains(t, pageBody, plan.Description)
	}
	require.Contains(t, pageBody, "490")
	require.Contains(t, pageBody, "990")
	require.Contains(t, pageBody, "1990")
}

func TestContactFormAcknowledgesSubmission(t *testing.T) {
	router, _ := newPageTestRouter(t, &stubUserProvider{})

	formValues := url.Values{}
	formValues.Set("name", "Claire Fontaine")
	formValues.Set("email", "claire@example.com")
	formValues.Set("message", "Pouvez-vous accélérer la campagne en cours ?")

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(formValues.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Merci, votre message a bien été envoyé.")
}

func TestContactPageHidesAcknowledgementBeforeSubmission(t *testing.T) {
	router, _ := newPageTestRouter(t, &stubUserProvider{})

	recorder := renderPath(t, router, "/contact")

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotContains(t, recorder.Body.String(), "Merci, votre message a bien été envoyé.")
}

func TestAuthPagesCarryTheirForms(t *testing.T) {
	router, _ := newPageTestRouter(t, &stubUserProvider{})

	testCases := []struct {
		name            string
		path            string
		expectedHeading string
		expectedAction  string
	}{
		{name: "login", path: "/login", expectedHeading: "Connexion à votre espace", expectedAction: "/api/auth/login"},
		{name: "signup", path: "/signup", expectedHeading: "Créer votre compte", expectedAction: "/api/auth/signup"},
		{name: "reset", path: "/reset-password", expectedHeading: "Réinitialiser le mot de passe", expectedAction: "/api/auth/reset"},
		{name: "update", path: "/update-password", expectedHeading: "Choisir un nouveau mot de passe", expectedAction: "/api/security/password"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(subT *testing.T) {
			recorder := renderPath(subT, router, testCase.path)

			require.Equal(subT, http.StatusOK, recorder.Code)
			pageBody := recorder.Body.String()
			require.Contains(subT, pageBody, testCase.expectedHeading)
			require.Contains(subT, pageBody, testCase.expectedAction)
		})
	}
}

func TestSignupPageStatesPasswordRequirement(t *testing.T) {
	router, _ := newPageTestRouter(t, &stubUserProvider{})

	recorder := renderPath(t, router, "/signup")

	require.Contains(t, recorder.Body.String(), "Le mot de passe doit contenir au moins 8 caractères.")
}

func TestDashboardPageGreetsByProfileName(t *testing.T) {
	currentUser := &api.CurrentUser{
		ID:    "27c8b5d4-1f0a-4d77-9f53-8a1f2c6de901",
		Email: "claire@example.com",
	}
	router, handlers := newPageTestRouter(t, &stubUserProvider{currentUser: currentUser})

	require.NoError(t, handlers.database.Create(&model.Profile{
		ID:       currentUser.ID,
		Email:    currentUser.Email,
		FullName: "Claire Fontaine",
	}).Error)

	recorder := renderPath(t, router, "/dashboard")

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Bonjour Claire Fontaine")
}

func TestDashboardPageFallsBackToEmailWithoutProfile(t *testing.T) {
	currentUser := &api.CurrentUser{
		ID:    "5f9f0a64-3b6d-4f2e-8c11-2de0b7a94c35",
		Email: "nouveau@example.com",
	}
	router, _ := newPageTestRouter(t, &stubUserProvider{currentUser: currentUser})

	recorder := renderPath(t, router, "/dashboard")

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Bonjour nouveau@example.com")
}

func TestDashboardPageRedirectsWhenSessionMissing(t *testing.T) {
	router, _ := newPageTestRouter(t, &stubUserProvider{})

	recorder := renderPath(t, router, "/dashboard")

	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, "/login", recorder.Header().Get("Location"))
}
