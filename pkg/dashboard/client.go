package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	profileEndpointPath   = "/api/profile"
	campaignsEndpointPath = "/api/campaigns"
	invoicesEndpointPath  = "/api/invoices"
	activityEndpointPath  = "/api/activity"
	passwordEndpointPath  = "/api/security/password"
	loginEndpointPath     = "/api/auth/login"
	logoutEndpointPath    = "/api/auth/logout"

	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"

	jsonErrorField        = "error"
	maxErrorResponseBytes = 1 << 16

	genericFetchErrorMessage = "Erreur de chargement."
)

var defaultClientTimeout = 15 * time.Second

var (
	// ErrUnauthenticated indicates the gateway rejected the session.
	ErrUnauthenticated = errors.New("dashboard: unauthenticated")
	// ErrNotFound indicates the requested resource is absent or not owned by the caller.
	ErrNotFound = errors.New("dashboard: not found")
)

// APIError carries the gateway's status category and human-readable message.
type APIError struct {
	StatusCode int
	Message    string
}

func (apiError *APIError) Error() string {
	return fmt.Sprintf("dashboard: gateway status %d: %s", apiError.StatusCode, apiError.Message)
}

// Unwrap maps the status category onto the package sentinels.
func (apiError *APIError) Unwrap() error {
	switch apiError.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// ProfileUpdate carries the customer-editable profile fields for submission.
type ProfileUpdate struct {
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Company        string `json:"company"`
	CompanyWebsite string `json:"company_website"`
	CompanySector  string `json:"company_sector"`
}

// Gateway is the controller's view of the portal API.
type Gateway interface {
	FetchProfile(ctx context.Context) (Profile, error)
	FetchCampaigns(ctx context.Context) ([]Campaign, error)
	FetchCampaignDetail(ctx context.Context, campaignID string) (CampaignDetail, error)
	FetchInvoices(ctx context.Context) ([]Invoice, error)
	FetchActivity(ctx context.Context) ([]ActivityEntry, error)
	SubmitProfileUpdate(ctx context.Context, update ProfileUpdate) error
	SubmitPasswordChange(ctx context.Context, newPassword string) error
}

// Client implements Gateway over HTTP with a cookie-backed session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given portal base URL.
func NewClient(baseURL string) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedBaseURL == "" {
		return nil, errors.New("dashboard: missing base URL")
	}
	if _, parseErr := url.Parse(trimmedBaseURL); parseErr != nil {
		return nil, fmt.Errorf("dashboard: parse base URL: %w", parseErr)
	}

	jar, jarErr := cookiejar.New(nil)
	if jarErr != nil {
		return nil, fmt.Errorf("dashboard: cookie jar: %w", jarErr)
	}

	return &Client{
		baseURL:    trimmedBaseURL,
		httpClient: &http.Client{Jar: jar, Timeout: defaultClientTimeout},
	}, nil
}

// SignIn establishes the session cookie for subsequent calls.
func (client *Client) SignIn(ctx context.Context, email string, password string) error {
	payload := map[string]string{"email": email, "password": password}
	return client.send(ctx, http.MethodPost, loginEndpointPath, payload, nil)
}

// SignOut revokes the session.
func (client *Client) SignOut(ctx context.Context) error {
	return client.send(ctx, http.MethodPost, logoutEndpointPath, struct{}{}, nil)
}

// FetchProfile loads the caller's profile.
func (client *Client) FetchProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	if requestErr := client.send(ctx, http.MethodGet, profileEndpointPath, nil, &profile); requestErr != nil {
		return Profile{}, requestErr
	}
	return profile, nil
}

// FetchCampaigns loads every campaign owned by the caller.
func (client *Client) FetchCampaigns(ctx context.Context) ([]Campaign, error) {
	var campaigns []Campaign
	if requestErr := client.send(ctx, http.MethodGet, campaignsEndpointPath, nil, &campaigns); requestErr != nil {
		return nil, requestErr
	}
	return campaigns, nil
}

// FetchCampaignDetail loads one owned campaign with its backlinks.
func (client *Client) FetchCampaignDetail(ctx context.Context, campaignID string) (CampaignDetail, error) {
	var detail CampaignDetail
	endpoint := campaignsEndpointPath + "/" + url.PathEscape(campaignID)
	if requestErr := client.send(ctx, http.MethodGet, endpoint, nil, &detail); requestErr != nil {
		return CampaignDetail{}, requestErr
	}
	return detail, nil
}

// FetchInvoices loads every invoice owned by the caller.
func (client *Client) FetchInvoices(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	if requestErr := client.send(ctx, http.MethodGet, invoicesEndpointPath, nil, &invoices); requestErr != nil {
		return nil, requestErr
	}
	return invoices, nil
}

// FetchActivity loads the caller's most recent activity entries.
func (client *Client) FetchActivity(ctx context.Context) ([]ActivityEntry, error) {
	var entries []ActivityEntry
	if requestErr := client.send(ctx, http.MethodGet, activityEndpointPath, nil, &entries); requestErr != nil {
		return nil, requestErr
	}
	return entries, nil
}

// SubmitProfileUpdate applies a profile mutation.
func (client *Client) SubmitProfileUpdate(ctx context.Context, update ProfileUpdate) error {
	return client.send(ctx, http.MethodPatch, profileEndpointPath, update, nil)
}

// SubmitPasswordChange applies a credential mutation.
func (client *Client) SubmitPasswordChange(ctx context.Context, newPassword string) error {
	payload := map[string]string{"password": newPassword}
	return client.send(ctx, http.MethodPost, passwordEndpointPath, payload, nil)
}

func (client *Client) send(ctx context.Context, method string, endpointPath string, requestBody any, responseBody any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		encodedBody, encodeErr := json.Marshal(requestBody)
		if encodeErr != nil {
			return encodeErr
		}
		bodyReader = bytes.NewReader(encodedBody)
	}

	request, requestErr := http.NewRequestWithContext(ctx, method, client.baseURL+endpointPath, bodyReader)
	if requestErr != nil {
		return requestErr
	}
	if requestBody != nil {
		request.Header.Set(headerContentType, contentTypeJSON)
	}

	response, responseErr := client.httpClient.Do(request)
	if responseErr != nil {
		return responseErr
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(response)
	}

	if responseBody == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func decodeAPIError(response *http.Response) error {
	rawBody, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorResponseBytes))

	var payload map[string]any
	message := ""
	if unmarshalErr := json.Unmarshal(rawBody, &payload); unmarshalErr == nil {
		if value, ok := payload[jsonErrorField].(string); ok {
			message = strings.TrimSpace(value)
		}
	}
	if message == "" {
		message = genericFetchErrorMessage
	}

	return &APIError{StatusCode: response.StatusCode, Message: message}
}
