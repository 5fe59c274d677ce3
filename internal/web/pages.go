package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kareemeredaze/maitre-seo/internal/api"
	"github.com/kareemeredaze/maitre-seo/internal/model"
)

const (
	pageContentTypeHTML = "text/html; charset=utf-8"

	pageTitleHome           = "Netlinking sur mesure"
	pageTitlePricing        = "Tarifs"
	pageTitleContact        = "Contact"
	pageTitleLogin          = "Connexion"
	pageTitleSignup         = "Créer un compte"
	pageTitleResetPassword  = "Mot de passe oublié"
	pageTitleUpdatePassword = "Nouveau mot de passe"
	pageTitleDashboard      = "Mon espace"

	logEventRenderPageFailed = "render_page_failed"
	logFieldPageName         = "page"
	renderErrorValue         = "page_render_failed"
)

// CurrentUserProvider reports whether the request carries an authenticated session.
type CurrentUserProvider interface {
	CurrentUser(*gin.Context) (*api.CurrentUser, bool)
}

// PricingPlan describes one subscription formula shown on the pricing page.
type PricingPlan struct {
	Name          string
	MonthlyPrice  int
	LinksPerMonth int
	Description   string
}

var defaultPricingPlans = []PricingPlan{
	{
		Name:          "Essentiel",
		MonthlyPrice:  490,
		LinksPerMonth: 5,
		Description:   "Pour poser les fondations : liens thématiques DR 30 et plus.",
	},
	{
		Name:          "Croissance",
		MonthlyPrice:  990,
		LinksPerMonth: 12,
		Description:   "Le rythme idéal pour viser la première page sur vos requêtes clés.",
	},
	{
		Name:          "Autorité",
		MonthlyPrice:  1990,
		LinksPerMonth: 25,
		Description:   "Campagnes intensives sur médias à forte audience, DR 50 et plus.",
	},
}

type basePageData struct {
	Title         string
	Authenticated bool
}

type pricingPageData struct {
	basePageData
	Plans []PricingPlan
}

type contactPageData struct {
	basePageData
	Sent bool
}

type authPageData struct {
	basePageData
	Heading       string
	SubmitPath    string
	SubmitLabel   string
	ShowFullName  bool
	ShowEmail     bool
	ShowPassword  bool
	ErrorMessage  string
	Note          string
	AlternateHTML template.HTML
}

type dashboardPageData struct {
	basePageData
	DisplayName string
}

// PageHandlers renders the public marketing pages and the authenticated shell.
type PageHandlers struct {
	database            *gorm.DB
	logger              *zap.Logger
	currentUserProvider CurrentUserProvider

	homeTemplate      *template.Template
	pricingTemplate   *template.Template
	contactTemplate   *template.Template
	authTemplate      *template.Template
	dashboardTemplate *template.Template
}

// NewPageHandlers compiles every page template once at startup.
func NewPageHandlers(database *gorm.DB, logger *zap.Logger, currentUserProvider CurrentUserProvider) *PageHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandlers{
		database:            database,
		logger:              logger,
		currentUserProvider: currentUserProvider,
		homeTemplate:        compilePageTemplate("home", homeTemplateHTML),
		pricingTemplate:     compilePageTemplate("pricing", pricingTemplateHTML),
		contactTemplate:     compilePageTemplate("contact", contactTemplateHTML),
		authTemplate:        compilePageTemplate("auth", authTemplateHTML),
		dashboardTemplate:   compilePageTemplate("dashboard", dashboardTemplateHTML),
	}
}

func compilePageTemplate(templateName string, pageHTML string) *template.Template {
	compiled := template.Must(template.New(templateName).Parse(layoutTemplateHTML))
	return template.Must(compiled.Parse(pageHTML))
}

func (handlers *PageHandlers) baseData(context *gin.Context, pageTitle string) basePageData {
	authenticated := false
	if handlers.currentUserProvider != nil {
		_, authenticated = handlers.currentUserProvider.CurrentUser(context)
	}
	return basePageData{Title: pageTitle, Authenticated: authenticated}
}

// RenderHomePage writes the landing page.
func (handlers *PageHandlers) RenderHomePage(context *gin.Context) {
	handlers.renderPage(context, handlers.homeTemplate, "home", handlers.baseData(context, pageTitleHome))
}

// RenderPricingPage writes the pricing page with the current formulas.
func (handlers *PageHandlers) RenderPricingPage(context *gin.Context) {
	data := pricingPageData{
		basePageData: handlers.baseData(context, pageTitlePricing),
		Plans:        defaultPricingPlans,
	}
	handlers.renderPage(context, handlers.pricingTemplate, "pricing", data)
}

// RenderContactPage writes the contact form.
func (handlers *PageHandlers) RenderContactPage(context *gin.Context) {
	data := contactPageData{basePageData: handlers.baseData(context, pageTitleContact)}
	handlers.renderPage(context, handlers.contactTemplate, "contact", data)
}

// SubmitContactForm acknowledges a contact message. Delivery goes through the
// team inbox; the portal only logs the request.
func (handlers *PageHandlers) SubmitContactForm(context *gin.Context) {
	handlers.logger.Info("contact_message_received",
		zap.String("name", context.PostForm("name")),
		zap.String("email", context.PostForm("email")),
	)
	data := contactPageData{
		basePageData: handlers.baseData(context, pageTitleContact),
		Sent:         true,
	}
	handlers.renderPage(context, handlers.contactTemplate, "contact", data)
}

// RenderLoginPage writes the sign-in form.
func (handlers *PageHandlers) RenderLoginPage(context *gin.Context) {
	data := authPageData{
		basePageData:  handlers.baseData(context, pageTitleLogin),
		Heading:       "Connexion à votre espace",
		SubmitPath:    "/api/auth/login",
		SubmitLabel:   "Se connecter",
		ShowEmail:     true,
		ShowPassword:  true,
		AlternateHTML: template.HTML(`<p class="form-note"><a href="/reset-password">Mot de passe oublié ?</a> · <a href="/signup">Créer un compte</a></p>`),
	}
	handlers.renderPage(context, handlers.authTemplate, "login", data)
}

// RenderSignupPage writes the account-creation form.
func (handlers *PageHandlers) RenderSignupPage(context *gin.Context) {
	data := authPageData{
		basePageData:  handlers.baseData(context, pageTitleSignup),
		Heading:       "Créer votre compte",
		SubmitPath:    "/api/auth/signup",
		SubmitLabel:   "Créer mon compte",
		ShowFullName:  true,
		ShowEmail:     true,
		ShowPassword:  true,
		Note:          "Le mot de passe doit contenir au moins 8 caractères.",
		AlternateHTML: template.HTML(`<p class="form-note">Déjà client ? <a href="/login">Se connecter</a></p>`),
	}
	handlers.renderPage(context, handlers.authTemplate, "signup", data)
}

// RenderResetPasswordPage writes the reset-request form.
func (handlers *PageHandlers) RenderResetPasswordPage(context *gin.Context) {
	data := authPageData{
		basePageData: handlers.baseData(context, pageTitleResetPassword),
		Heading:      "Réinitialiser le mot de passe",
		SubmitPath:   "/api/auth/reset",
		SubmitLabel:  "Envoyer le lien",
		ShowEmail:    true,
		Note:         "Si un compte existe pour cette adresse, un email de réinitialisation sera envoyé.",
	}
	handlers.renderPage(context, handlers.authTemplate, "reset-password", data)
}

// RenderUpdatePasswordPage writes the new-password form reached from the reset email.
func (handlers *PageHandlers) RenderUpdatePasswordPage(context *gin.Context) {
	data := authPageData{
		basePageData: handlers.baseData(context, pageTitleUpdatePassword),
		Heading:      "Choisir un nouveau mot de passe",
		SubmitPath:   "/api/security/password",
		SubmitLabel:  "Enregistrer",
		ShowPassword: true,
		Note:         "Le mot de passe doit contenir au moins 8 caractères.",
	}
	handlers.renderPage(context, handlers.authTemplate, "update-password", data)
}

// RenderDashboardPage writes the authenticated shell. The route is guarded by
// the session middleware, so an absent user means the session just expired.
func (handlers *PageHandlers) RenderDashboardPage(context *gin.Context) {
	currentUser, authenticated := handlers.currentUserProvider.CurrentUser(context)
	if !authenticated {
		context.Redirect(http.StatusFound, "/login")
		return
	}

	displayName := currentUser.Email
	var profile model.Profile
	lookupErr := handlers.database.First(&profile, "id = ?", currentUser.ID).Error
	if lookupErr == nil && profile.FullName != "" {
		displayName = profile.FullName
	} else if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		handlers.logger.Warn("dashboard_profile_lookup_failed", zap.Error(lookupErr))
	}

	data := dashboardPageData{
		basePageData: basePageData{Title: pageTitleDashboard, Authenticated: true},
		DisplayName:  displayName,
	}
	handlers.renderPage(context, handlers.dashboardTemplate, "dashboard", data)
}

func (handlers *PageHandlers) renderPage(context *gin.Context, pageTemplate *template.Template, pageName string, data any) {
	var buffer bytes.Buffer
	executeErr := pageTemplate.Execute(&buffer, data)
	if executeErr != nil {
		handlers.logger.Error(logEventRenderPageFailed,
			zap.String(logFieldPageName, pageName),
			zap.Error(executeErr),
		)
		context.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": renderErrorValue})
		return
	}
	context.Data(http.StatusOK, pageContentTypeHTML, buffer.Bytes())
}
