package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	headerAPIKey        = "apikey"
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
	bearerPrefix        = "Bearer "

	tokenEndpointPath    = "/token"
	signupEndpointPath   = "/signup"
	recoverEndpointPath  = "/recover"
	userEndpointPath     = "/user"
	logoutEndpointPath   = "/logout"
	passwordGrantQuery   = "grant_type=password"
	redirectToQueryParam = "redirect_to"

	invalidGrantErrorCode       = "invalid_grant"
	invalidCredentialsFragment  = "invalid login credentials"
	maxErrorResponseBytes       = 1 << 16
	genericProviderErrorMessage = "identity provider request failed"
)

var defaultRequestTimeout = 10 * time.Second

// HTTPClient executes outbound HTTP requests.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// ClientConfig captures the connection settings for the hosted auth service.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient HTTPClient
}

// Client implements Provider against a GoTrue-style REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
}

// NewClient constructs a Client from the provided configuration.
func NewClient(configuration ClientConfig) *Client {
	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/"),
		apiKey:     strings.TrimSpace(configuration.APIKey),
		httpClient: httpClient,
	}
}

type tokenRequestPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequestPayload struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type recoverRequestPayload struct {
	Email string `json:"email"`
}

type updateUserRequestPayload struct {
	Password string `json:"password"`
}

type sessionResponsePayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorResponsePayload struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
}

// SignIn exchanges an email/password pair for a provider session.
func (client *Client) SignIn(ctx context.Context, email string, password string) (Session, error) {
	endpoint := fmt.Sprintf("%s%s?%s", client.baseURL, tokenEndpointPath, passwordGrantQuery)
	payload := tokenRequestPayload{Email: email, Password: password}

	var session sessionResponsePayload
	if requestErr := client.postJSON(ctx, endpoint, "", payload, &session); requestErr != nil {
		return Session{}, requestErr
	}

	return sessionFromResponse(session), nil
}

// SignUp registers a new account and returns its initial session.
func (client *Client) SignUp(ctx context.Context, email string, password string, displayName string) (Session, error) {
	endpoint := client.baseURL + signupEndpointPath
	payload := signupRequestPayload{Email: email, Password: password}
	trimmedDisplayName := strings.TrimSpace(displayName)
	if trimmedDisplayName != "" {
		payload.Data = map[string]any{"full_name": trimmedDisplayName}
	}

	var session sessionResponsePayload
	if requestErr := client.postJSON(ctx, endpoint, "", payload, &session); requestErr != nil {
		return Session{}, requestErr
	}

	return sessionFromResponse(session), nil
}

// SignOut revokes the provider session bound to the access token.
func (client *Client) SignOut(ctx context.Context, accessToken string) error {
	endpoint := client.baseURL + logoutEndpointPath
	return client.postJSON(ctx, endpoint, accessToken, struct{}{}, nil)
}

// SendPasswordReset asks the provider to email a recovery link. The provider
// answers success regardless of account existence.
func (client *Client) SendPasswordReset(ctx context.Context, email string, redirectURL string) error {
	endpoint := client.baseURL + recoverEndpointPath
	trimmedRedirectURL := strings.TrimSpace(redirectURL)
	if trimmedRedirectURL != "" {
		endpoint = fmt.Sprintf("%s?%s=%s", endpoint, redirectToQueryParam, url.QueryEscape(trimmedRedirectURL))
	}
	return client.postJSON(ctx, endpoint, "", recoverRequestPayload{Email: email}, nil)
}

// UpdatePassword replaces the credential of the account bound to the access token.
func (client *Client) UpdatePassword(ctx context.Context, accessToken string, newPassword string) error {
	endpoint := client.baseURL + userEndpointPath
	return client.sendJSON(ctx, http.MethodPut, endpoint, accessToken, updateUserRequestPayload{Password: newPassword}, nil)
}

func (client *Client) postJSON(ctx context.Context, endpoint string, accessToken string, requestBody any, responseBody any) error {
	return client.sendJSON(ctx, http.MethodPost, endpoint, accessToken, requestBody, responseBody)
}

func (client *Client) sendJSON(ctx context.Context, method string, endpoint string, accessToken string, requestBody any, responseBody any) error {
	encodedBody, encodeErr := json.Marshal(requestBody)
	if encodeErr != nil {
		return encodeErr
	}

	request, requestErr := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(encodedBody))
	if requestErr != nil {
		return requestErr
	}
	request.Header.Set(headerContentType, contentTypeJSON)
	if client.apiKey != "" {
		request.Header.Set(headerAPIKey, client.apiKey)
	}
	if accessToken != "" {
		request.Header.Set(headerAuthorization, bearerPrefix+accessToken)
	}

	response, responseErr := client.httpClient.Do(request)
	if responseErr != nil {
		return responseErr
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return decodeProviderError(response)
	}

	if responseBody == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func decodeProviderError(response *http.Response) error {
	rawBody, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorResponseBytes))

	var payload errorResponsePayload
	_ = json.Unmarshal(rawBody, &payload)

	message := firstNonEmpty(payload.ErrorDescription, payload.Msg, payload.Message, payload.Error)
	if isInvalidCredentialsMessage(payload.Error, message) {
		return ErrInvalidCredentials
	}
	if message == "" {
		message = genericProviderErrorMessage
	}

	return &ProviderError{StatusCode: response.StatusCode, Message: message}
}

func isInvalidCredentialsMessage(errorCode string, message string) bool {
	if strings.EqualFold(strings.TrimSpace(errorCode), invalidGrantErrorCode) {
		return true
	}
	return strings.Contains(strings.ToLower(message), invalidCredentialsFragment)
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func sessionFromResponse(payload sessionResponsePayload) Session {
	return Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		UserID:       payload.User.ID,
		Email:        strings.ToLower(strings.TrimSpace(payload.User.Email)),
	}
}
