package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kareemeredaze/maitre-seo/internal/api"
	"github.com/kareemeredaze/maitre-seo/internal/web"
)

const (
	pageRouteHome           = "/"
	pageRoutePricing        = "/pricing"
	pageRouteContact        = "/contact"
	pageRouteLogin          = "/login"
	pageRouteSignup         = "/signup"
	pageRouteResetPassword  = "/reset-password"
	pageRouteUpdatePassword = "/update-password"
	pageRouteDashboard      = "/dashboard"

	authRouteLogin  = "/api/auth/login"
	authRouteSignup = "/api/auth/signup"
	authRouteLogout = "/api/auth/logout"
	authRouteReset  = "/api/auth/reset"

	apiRoutePrefix         = "/api"
	apiRouteProfile        = "/profile"
	apiRouteCampaigns      = "/campaigns"
	apiRouteCampaignDetail = "/campaigns/:id"
	apiRouteInvoices       = "/invoices"
	apiRouteActivity       = "/activity"
	apiRoutePassword       = "/security/password"

	corsHeaderAuthorization = "Authorization"
	corsHeaderContentType   = "Content-Type"
	httpMethodGet           = "GET"
	httpMethodOptions       = "OPTIONS"
	httpMethodPatch         = "PATCH"
	httpMethodPost          = "POST"
)

var (
	corsAllowedMethods = []string{httpMethodGet, httpMethodPost, httpMethodPatch, httpMethodOptions}
	corsAllowedHeaders = []string{corsHeaderAuthorization, corsHeaderContentType}
	corsExposedHeaders = []string{corsHeaderContentType}
)

func registerFrontendRoutes(
	router *gin.Engine,
	authManager *api.AuthManager,
	pageHandlers *web.PageHandlers,
) {
	router.GET(pageRouteHome, pageHandlers.RenderHomePage)
	router.GET(pageRoutePricing, pageHandlers.RenderPricingPage)
	router.GET(pageRouteContact, pageHandlers.RenderContactPage)
	router.POST(pageRouteContact, pageHandlers.SubmitContactForm)
	router.GET(pageRouteLogin, pageHandlers.RenderLoginPage)
	router.GET(pageRouteSignup, pageHandlers.RenderSignupPage)
	router.GET(pageRouteResetPassword, pageHandlers.RenderResetPasswordPage)
	router.GET(pageRouteUpdatePassword, pageHandlers.RenderUpdatePasswordPage)
	router.GET(pageRouteDashboard, authManager.RequireAuthenticatedWeb(), pageHandlers.RenderDashboardPage)
}

func registerBackendRoutes(
	router *gin.Engine,
	authManager *api.AuthManager,
	authHandlers *api.AuthHandlers,
	profileHandlers *api.ProfileHandlers,
	campaignHandlers *api.CampaignHandlers,
	invoiceHandlers *api.InvoiceHandlers,
	activityHandlers *api.ActivityHandlers,
	securityHandlers *api.SecurityHandlers,
	authenticatedOrigin string,
) {
	authGroup := router.Group("/")
	authGroup.POST(authRouteLogin, authHandlers.Login)
	authGroup.POST(authRouteSignup, authHandlers.Signup)
	authGroup.POST(authRouteLogout, authHandlers.Logout)
	authGroup.POST(authRouteReset, authHandlers.RequestPasswordReset)

	apiGroup := router.Group(apiRoutePrefix)
	apiGroup.Use(cors.New(cors.Config{
		AllowOrigins:     []string{authenticatedOrigin},
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	apiGroup.Use(authManager.RequireAuthenticatedJSON())
	apiGroup.GET(apiRouteProfile, profileHandlers.GetProfile)
	apiGroup.PATCH(apiRouteProfile, profileHandlers.UpdateProfile)
	apiGroup.GET(apiRouteCampaigns, campaignHandlers.ListCampaigns)
	apiGroup.GET(apiRouteCampaignDetail, campaignHandlers.CampaignDetail)
	apiGroup.GET(apiRouteInvoices, invoiceHandlers.ListInvoices)
	apiGroup.GET(apiRouteActivity, activityHandlers.ListRecentActivity)
	apiGroup.POST(apiRoutePassword, securityHandlers.ChangePassword)
}
