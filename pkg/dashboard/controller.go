package dashboard

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
)

// View identifies one of the dashboard sections.
type View string

const (
	ViewOverview  View = "overview"
	ViewCampaigns View = "campaigns"
	ViewBilling   View = "billing"
	ViewSecurity  View = "security"
	ViewProfile   View = "profile"
)

const (
	minimumPasswordLength = 8

	passwordTooShortMessage = "Le mot de passe doit contenir au moins 8 caractères."
	passwordMismatchMessage = "Les mots de passe ne correspondent pas."
)

// ProfileForm holds the in-progress profile edits.
type ProfileForm struct {
	FullName       string
	Phone          string
	Company        string
	CompanyWebsite string
	CompanySector  string
}

// PasswordForm holds the in-progress credential change.
type PasswordForm struct {
	NewPassword     string
	ConfirmPassword string
}

// MutationState reports the outcome of the most recent form submission.
type MutationState struct {
	Pending      bool
	Succeeded    bool
	ErrorMessage string
}

// Controller drives the dashboard's resource lifecycle for one signed-in customer.
type Controller struct {
	gateway Gateway

	profile   *Resource[Profile]
	campaigns *Resource[[]Campaign]
	detail    *Resource[CampaignDetail]
	invoices  *Resource[[]Invoice]
	activity  *Resource[[]ActivityEntry]

	mutex              sync.Mutex
	currentView        View
	selectedCampaignID string
	profileForm        ProfileForm
	passwordForm       PasswordForm
	profileMutation    MutationState
	passwordMutation   MutationState
	sessionExpired     bool
	campaignsRequested bool
	invoicesRequested  bool
	activityRequested  bool

	pending sync.WaitGroup
}

// NewController builds a Controller bound to the given gateway.
func NewController(gateway Gateway) *Controller {
	return &Controller{
		gateway:     gateway,
		profile:     NewResource[Profile](),
		campaigns:   NewResource[[]Campaign](),
		detail:      NewResource[CampaignDetail](),
		invoices:    NewResource[[]Invoice](),
		activity:    NewResource[[]ActivityEntry](),
		currentView: ViewOverview,
	}
}

// Start loads the profile eagerly and the initial view's resources.
func (controller *Controller) Start(ctx context.Context) {
	controller.loadProfile(ctx)
	controller.ShowView(ctx, ViewOverview)
}

// ShowView switches the visible section and lazily loads its resources.
func (controller *Controller) ShowView(ctx context.Context, view View) {
	controller.mutex.Lock()
	controller.currentView = view
	controller.mutex.Unlock()

	switch view {
	case ViewOverview:
		controller.ensureCampaigns(ctx)
		controller.ensureActivity(ctx)
	case ViewCampaigns:
		controller.ensureCampaigns(ctx)
	case ViewBilling:
		controller.ensureInvoices(ctx)
	case ViewSecurity, ViewProfile:
		// Served entirely from the profile resource and local forms.
	}
}

// CurrentView reports the visible section.
func (controller *Controller) CurrentView() View {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.currentView
}

// SessionExpired reports whether a gateway call was rejected as unauthenticated.
func (controller *Controller) SessionExpired() bool {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.sessionExpired
}

// WaitIdle blocks until every in-flight fetch and mutation has settled.
func (controller *Controller) WaitIdle() {
	controller.pending.Wait()
}

// ProfileSnapshot exposes the profile resource state.
func (controller *Controller) ProfileSnapshot() Snapshot[Profile] {
	return controller.profile.Snapshot()
}

// CampaignsSnapshot exposes the campaign list resource state.
func (controller *Controller) CampaignsSnapshot() Snapshot[[]Campaign] {
	return controller.campaigns.Snapshot()
}

// CampaignDetailSnapshot exposes the selected campaign's detail resource state.
func (controller *Controller) CampaignDetailSnapshot() Snapshot[CampaignDetail] {
	return controller.detail.Snapshot()
}

// InvoicesSnapshot exposes the invoice list resource state.
func (controller *Controller) InvoicesSnapshot() Snapshot[[]Invoice] {
	return controller.invoices.Snapshot()
}

// ActivitySnapshot exposes the recent-activity resource state.
func (controller *Controller) ActivitySnapshot() Snapshot[[]ActivityEntry] {
	return controller.activity.Snapshot()
}

// RefetchProfile forces a fresh profile load.
func (controller *Controller) RefetchProfile(ctx context.Context) {
	controller.loadProfile(ctx)
}

// RefetchCampaigns forces a fresh campaign list load.
func (controller *Controller) RefetchCampaigns(ctx context.Context) {
	controller.fetchCampaigns(ctx)
}

// RefetchInvoices forces a fresh invoice list load.
func (controller *Controller) RefetchInvoices(ctx context.Context) {
	controller.fetchInvoices(ctx)
}

// RefetchActivity forces a fresh activity load.
func (controller *Controller) RefetchActivity(ctx context.Context) {
	controller.fetchActivity(ctx)
}

// SelectCampaign loads the detail resource for the chosen campaign.
func (controller *Controller) SelectCampaign(ctx context.Context, campaignID string) {
	trimmedID := strings.TrimSpace(campaignID)
	if trimmedID == "" {
		return
	}

	controller.mutex.Lock()
	controller.selectedCampaignID = trimmedID
	controller.mutex.Unlock()

	sequence := controller.detail.BeginFetch()
	controller.pending.Add(1)
	go func() {
		defer controller.pending.Done()
		detail, fetchErr := controller.gateway.FetchCampaignDetail(ctx, trimmedID)
		if fetchErr != nil {
			controller.detail.FailFetch(sequence, controller.classifyError(fetchErr))
			return
		}
		controller.detail.CompleteFetch(sequence, detail)
	}()
}

// SelectCampaignAt selects a campaign by its position in the loaded list.
// Out-of-range positions are ignored.
func (controller *Controller) SelectCampaignAt(ctx context.Context, index int) {
	campaignsSnapshot := controller.campaigns.Snapshot()
	if !campaignsSnapshot.HasData || index < 0 || index >= len(campaignsSnapshot.Data) {
		return
	}
	controller.SelectCampaign(ctx, campaignsSnapshot.Data[index].ID)
}

// SelectedCampaignID reports the campaign whose detail is shown.
func (controller *Controller) SelectedCampaignID() string {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.selectedCampaignID
}

func (controller *Controller) ensureCampaigns(ctx context.Context) {
	controller.mutex.Lock()
	alreadyRequested := controller.campaignsRequested
	controller.campaignsRequested = true
	controller.mutex.Unlock()
	if alreadyRequested {
		return
	}
	controller.fetchCampaigns(ctx)
}

func (controller *Controller) ensureInvoices(ctx context.Context) {
	controller.mutex.Lock()
	alreadyRequested := controller.invoicesRequested
	controller.invoicesRequested = true
	controller.mutex.Unlock()
	if alreadyRequested {
		return
	}
	controller.fetchInvoices(ctx)
}

func (controller *Controller) ensureActivity(ctx context.Context) {
	controller.mutex.Lock()
	alreadyRequested := controller.activityRequested
	controller.activityRequested = true
	controller.mutex.Unlock()
	if alreadyRequested {
		return
	}
	controller.fetchActivity(ctx)
}

func (controller *Controller) loadProfile(ctx context.Context) {
	sequence := controller.profile.BeginFetch()
	controller.pending.Add(1)
	go func() {
		defer controller.pending.Done()
		profile, fetchErr := controller.gateway.FetchProfile(ctx)
		if fetchErr != nil {
			controller.profile.FailFetch(sequence, controller.classifyError(fetchErr))
			return
		}
		if controller.profile.CompleteFetch(sequence, profile) {
			controller.seedProfileForm(profile)
		}
	}()
}

func (controller *Controller) fetchCampaigns(ctx context.Context) {
	sequence := controller.campaigns.BeginFetch()
	controller.pending.Add(1)
	go func() {
		defer controller.pending.Done()
		campaigns, fetchErr := controller.gateway.FetchCampaigns(ctx)
		if fetchErr != nil {
			controller.campaigns.FailFetch(sequence, controller.classifyError(fetchErr))
			return
		}
		if controller.campaigns.CompleteFetch(sequence, campaigns) {
			controller.autoSelectFirstCampaign(ctx, campaigns)
		}
	}()
}

func (controller *Controller) autoSelectFirstCampaign(ctx context.Context, campaigns []Campaign) {
	if len(campaigns) == 0 {
		return
	}
	controller.mutex.Lock()
	alreadySelected := controller.selectedCampaignID != ""
	controller.mutex.Unlock()
	if alreadySelected {
		return
	}
	controller.SelectCampaign(ctx, campaigns[0].ID)
}

func (controller *Controller) fetchInvoices(ctx context.Context) {
	sequence := controller.invoices.BeginFetch()
	controller.pending.Add(1)
	go func() {
		defer controller.pending.Done()
		invoices, fetchErr := controller.gateway.FetchInvoices(ctx)
		if fetchErr != nil {
			controller.invoices.FailFetch(sequence, controller.classifyError(fetchErr))
			return
		}
		controller.invoices.CompleteFetch(sequence, invoices)
	}()
}

func (controller *Controller) fetchActivity(ctx context.Context) {
	sequence := controller.activity.BeginFetch()
	controller.pending.Add(1)
	go func() {
		defer controller.pending.Done()
		entries, fetchErr := controller.gateway.FetchActivity(ctx)
		if fetchErr != nil {
			controller.activity.FailFetch(sequence, controller.classifyError(fetchErr))
			return
		}
		controller.activity.CompleteFetch(sequence, entries)
	}()
}

func (controller *Controller) classifyError(fetchErr error) string {
	if errors.Is(fetchErr, ErrUnauthenticated) {
		controller.mutex.Lock()
		controller.sessionExpired = true
		controller.mutex.Unlock()
	}
	var apiError *APIError
	if errors.As(fetchErr, &apiError) {
		return apiError.Message
	}
	return genericFetchErrorMessage
}

func (controller *Controller) seedProfileForm(profile Profile) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.profileForm = ProfileForm{
		FullName:       profile.FullName,
		Phone:          profile.Phone,
		Company:        profile.Company,
		CompanyWebsite: profile.CompanyWebsite,
		CompanySector:  profile.CompanySector,
	}
}

// ProfileForm returns the current profile edits.
func (controller *Controller) ProfileForm() ProfileForm {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.profileForm
}

// SetProfileForm replaces the in-progress profile edits.
func (controller *Controller) SetProfileForm(form ProfileForm) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.profileForm = form
}

// PasswordForm returns the in-progress credential change.
func (controller *Controller) PasswordForm() PasswordForm {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.passwordForm
}

// SetPasswordForm replaces the in-progress credential change.
func (controller *Controller) SetPasswordForm(form PasswordForm) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	controller.passwordForm = form
}

// ProfileMutation reports the outcome of the latest profile submission.
func (controller *Controller) ProfileMutation() MutationState {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.profileMutation
}

// PasswordMutation reports the outcome of the latest credential submission.
func (controller *Controller) PasswordMutation() MutationState {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.passwordMutation
}

// SubmitProfile sends the current profile form to the gateway. The form is
// preserved on failure so the customer can correct and resubmit.
func (controller *Controller) SubmitProfile(ctx context.Context) {
	controller.mutex.Lock()
	form := controller.profileForm
	controller.profileMutation = MutationState{Pending: true}
	controller.mutex.Unlock()

	controller.pending.Add(1)
	go func() {
		defer controller.pending.Done()
		submitErr := controller.gateway.SubmitProfileUpdate(ctx, ProfileUpdate{
			FullName:       form.FullName,
			Phone:          form.Phone,
			Company:        form.Company,
			CompanyWebsite: form.CompanyWebsite,
			CompanySector:  form.CompanySector,
		})
		if submitErr != nil {
			controller.mutex.Lock()
			controller.profileMutation = MutationState{ErrorMessage: controller.classifyErrorLocked(submitErr)}
			controller.mutex.Unlock()
			return
		}
		controller.mutex.Lock()
		controller.profileMutation = MutationState{Succeeded: true}
		controller.mutex.Unlock()
		controller.loadProfile(ctx)
	}()
}

// classifyErrorLocked is classifyError for callers already holding the mutex.
func (controller *Controller) classifyErrorLocked(fetchErr error) string {
	if errors.Is(fetchErr, ErrUnauthenticated) {
		controller.sessionExpired = true
	}
	var apiError *APIError
	if errors.As(fetchErr, &apiError) {
		return apiError.Message
	}
	return genericFetchErrorMessage
}

// SubmitPassword validates and sends the credential change. Validation
// failures never reach the gateway. The form is cleared only on success.
func (controller *Controller) SubmitPassword(ctx context.Context) {
	controller.mutex.Lock()
	form := controller.passwordForm
	if len(form.NewPassword) < minimumPasswordLength {
		controller.passwordMutation = MutationState{ErrorMessage: passwordTooShortMessage}
		controller.mutex.Unlock()
		return
	}
	if form.NewPassword != form.ConfirmPassword {
		controller.passwordMutation = MutationState{ErrorMessage: passwordMismatchMessage}
		controller.mutex.Unlock()
		return
	}
	controller.passwordMutation = MutationState{Pending: true}
	controller.mutex.Unlock()

	controller.pending.Add(1)
	go func() {
		defer controller.pending.Done()
		submitErr := controller.gateway.SubmitPasswordChange(ctx, form.NewPassword)
		controller.mutex.Lock()
		defer controller.mutex.Unlock()
		if submitErr != nil {
			controller.passwordMutation = MutationState{ErrorMessage: controller.classifyErrorLocked(submitErr)}
			return
		}
		controller.passwordMutation = MutationState{Succeeded: true}
		controller.passwordForm = PasswordForm{}
	}()
}

// AccountSummary aggregates the derived figures shown on the overview.
type AccountSummary struct {
	TotalDelivered    int
	TotalTarget       int
	ProgressPercent   int
	ActiveCampaign    *Campaign
	TotalPaid         float64
	NextPending       *Invoice
	HasRecentActivity bool
}

// Summary computes the derived overview figures from loaded resources.
func (controller *Controller) Summary() AccountSummary {
	summary := AccountSummary{}

	campaignsSnapshot := controller.campaigns.Snapshot()
	if campaignsSnapshot.HasData {
		for index := range campaignsSnapshot.Data {
			summary.TotalDelivered += campaignsSnapshot.Data[index].DeliveredLinks
			summary.TotalTarget += campaignsSnapshot.Data[index].TargetLinks
		}
		summary.ProgressPercent = ProgressPercent(summary.TotalDelivered, summary.TotalTarget)
		summary.ActiveCampaign = activeCampaign(campaignsSnapshot.Data)
	}

	invoicesSnapshot := controller.invoices.Snapshot()
	if invoicesSnapshot.HasData {
		summary.TotalPaid = totalPaid(invoicesSnapshot.Data)
		summary.NextPending = nextPendingInvoice(invoicesSnapshot.Data)
	}

	activitySnapshot := controller.activity.Snapshot()
	summary.HasRecentActivity = activitySnapshot.HasData && len(activitySnapshot.Data) > 0

	return summary
}

// ProgressPercent reports delivered links as a rounded percentage of the
// target, guarded against a zero target and capped at 100 for display.
func ProgressPercent(delivered int, target int) int {
	if target <= 0 {
		return 0
	}
	percent := int(math.Round(float64(delivered) / float64(target) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

// activeCampaign picks the most recently created campaign still marked active.
func activeCampaign(campaigns []Campaign) *Campaign {
	var chosen *Campaign
	for index := range campaigns {
		candidate := &campaigns[index]
		if candidate.Status != campaignStatusActive {
			continue
		}
		if chosen == nil || candidate.CreatedAt.After(chosen.CreatedAt) {
			chosen = candidate
		}
	}
	if chosen == nil {
		return nil
	}
	copied := *chosen
	return &copied
}

func totalPaid(invoices []Invoice) float64 {
	total := 0.0
	for index := range invoices {
		if invoices[index].Status == invoiceStatusPaid {
			total += invoices[index].Amount
		}
	}
	return total
}

// nextPendingInvoice picks the pending invoice with the earliest due date.
func nextPendingInvoice(invoices []Invoice) *Invoice {
	pendingInvoices := make([]Invoice, 0, len(invoices))
	for index := range invoices {
		if invoices[index].Status == invoiceStatusPending {
			pendingInvoices = append(pendingInvoices, invoices[index])
		}
	}
	if len(pendingInvoices) == 0 {
		return nil
	}
	sort.Slice(pendingInvoices, func(left int, right int) bool {
		return pendingInvoices[left].DueDate.Before(pendingInvoices[right].DueDate)
	})
	chosen := pendingInvoices[0]
	return &chosen
}
