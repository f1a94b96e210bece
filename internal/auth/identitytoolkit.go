package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

const lookupPath = "/v1/accounts:lookup"

// IdentityToolkitVerifier checks Firebase ID tokens against the Identity
// Toolkit accounts:lookup endpoint.
type IdentityToolkitVerifier struct {
	h       *retryablehttp.Client
	baseURL string
	apiKey  string
}

func NewIdentityToolkitVerifier(baseURL, apiKey string, logger *slog.Logger) *IdentityToolkitVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	h := retryablehttp.NewClient()
	h.RetryMax = 0
	h.Logger = logger
	return &IdentityToolkitVerifier{h: h, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

func (v *IdentityToolkitVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	body, err := json.Marshal(map[string]string{"idToken": token})
	if err != nil {
		return nil, err
	}
	u := v.baseURL + lookupPath + "?key=" + url.QueryEscape(v.apiKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("accounts lookup: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: accounts lookup status %d", ErrInvalidToken, resp.StatusCode)
	}
	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode accounts lookup: %w", err)
	}
	if len(out.Users) == 0 || out.Users[0].LocalID == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UID: out.Users[0].LocalID, Email: out.Users[0].Email}, nil
}
