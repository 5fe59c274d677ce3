package web

import _ "embed"

//go:embed templates/layout.tmpl
var layoutTemplateHTML string

//go:embed templates/home.tmpl
var homeTemplateHTML string

//go:embed templates/pricing.tmpl
var pricingTemplateHTML string

//go:embed templates/contact.tmpl
var contactTemplateHTML string

//go:embed templates/auth.tmpl
var authTemplateHTML string

//go:embed templates/dashboard.tmpl
var dashboardTemplateHTML string
