package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// OAuthConfig holds the platform OAuth client settings.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// AuthBase is the accounts host, default https://accounts.salla.sa.
	AuthBase string
	// Scope requested during authorization, default "offline_access".
	Scope string
	// TimeoutSeconds bounds token endpoint requests.
	TimeoutSeconds int
}

func (c *OAuthConfig) applyDefaults() {
	if c.AuthBase == "" {
		c.AuthBase = "https://accounts.salla.sa"
	}
	if c.Scope == "" {
		c.Scope = "offline_access"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks the settings required for any token operation.
func (c *OAuthConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return salla.ErrOAuthNotConfigured
	}
	return nil
}

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// TokenManager hands out valid bearer tokens for one connected store,
// refreshing through the OAuth refresh grant when the stored token is no
// longer usable. Concurrent refreshes collapse into a single token endpoint
// call.
type TokenManager struct {
	config     *OAuthConfig
	store      salla.CredentialStore
	storeID    string
	httpClient *http.Client
	logger     *zap.Logger

	group singleflight.Group
	// now is swappable for tests.
	now func() time.Time
}

// NewTokenManager creates a token manager bound to one store's credential.
func NewTokenManager(config *OAuthConfig, store salla.CredentialStore, storeID string, logger *zap.Logger) (*TokenManager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &TokenManager{
		config:  config,
		store:   store,
		storeID: storeID,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}, nil
}

// AuthorizationURL builds the store-owner consent URL for the given CSRF
// state.
func (m *TokenManager) AuthorizationURL(state string) string {
	q := url.Values{}
	q.Set("client_id", m.config.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", m.config.RedirectURI)
	q.Set("scope", m.config.Scope)
	q.Set("state", state)
	return m.config.AuthBase + "/oauth2/auth?" + q.Encode()
}

// Token returns a bearer token valid for at least the expiry buffer. When the
// stored token is stale it refreshes, single-flighted so a burst of callers
// produces one refresh and all observe the new token.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	cred, err := m.store.Get(ctx, m.storeID)
	if err != nil {
		return "", err
	}
	if cred.Usable(m.now()) {
		return cred.AccessToken, nil
	}

	v, err, _ := m.group.Do(m.storeID, func() (interface{}, error) {
		// Re-read inside the flight: a racer may have refreshed while this
		// caller waited for the lock.
		cred, err := m.store.Get(ctx, m.storeID)
		if err != nil {
			return nil, err
		}
		if cred.Usable(m.now()) {
			return cred.AccessToken, nil
		}
		refreshed, err := m.refresh(ctx, cred)
		if err != nil {
			return nil, err
		}
		return refreshed.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Refresh forces a refresh grant regardless of the stored expiry.
func (m *TokenManager) Refresh(ctx context.Context) (*salla.RemoteCredential, error) {
	cred, err := m.store.Get(ctx, m.storeID)
	if err != nil {
		return nil, err
	}
	return m.refresh(ctx, cred)
}

func (m *TokenManager) refresh(ctx context.Context, cred *salla.RemoteCredential) (*salla.RemoteCredential, error) {
	if !cred.Refreshable() {
		return nil, salla.ErrCredentialIncomplete
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.RefreshToken)
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)

	resp, err := m.postToken(ctx, form)
	if err != nil {
		return nil, err
	}

	updated := m.credentialFrom(resp)
	if err := m.store.Save(ctx, updated); err != nil {
		return nil, err
	}
	m.logger.Info("refreshed platform token",
		zap.String("store_id", m.storeID),
		zap.Time("expires_at", updated.ExpiresAt))
	return updated, nil
}

// ExchangeCode trades an authorization code for the initial token pair and
// persists it.
func (m *TokenManager) ExchangeCode(ctx context.Context, code string) (*salla.RemoteCredential, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)
	form.Set("redirect_uri", m.config.RedirectURI)
	form.Set("scope", m.config.Scope)

	resp, err := m.postToken(ctx, form)
	if err != nil {
		return nil, err
	}

	cred := m.credentialFrom(resp)
	if err := m.store.Save(ctx, cred); err != nil {
		return nil, err
	}
	m.logger.Info("connected platform store", zap.String("store_id", m.storeID))
	return cred, nil
}

func (m *TokenManager) postToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.config.AuthBase+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if httpResp.StatusCode != http.StatusOK {
		if httpResp.StatusCode == http.StatusUnauthorized {
			return nil, &salla.AuthenticationError{APIError: salla.APIError{
				StatusCode: httpResp.StatusCode,
				Message:    "token grant rejected",
				Body:       truncate(string(body)),
			}}
		}
		return nil, &salla.APIError{
			StatusCode: httpResp.StatusCode,
			Message:    "token grant failed",
			Body:       truncate(string(body)),
		}
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("salla: malformed token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("salla: token response missing access_token")
	}
	return &resp, nil
}

func (m *TokenManager) credentialFrom(resp *tokenResponse) *salla.RemoteCredential {
	now := m.now()
	return &salla.RemoteCredential{
		StoreID:      m.storeID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(resp.ExpiresIn) * time.Second),
		Scope:        resp.Scope,
		UpdatedAt:    now,
	}
}
