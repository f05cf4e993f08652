package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrGoogleVerification = errors.New("google token verification failed")

const tokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleProfile is the subset of the tokeninfo response we use.
type GoogleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Aud     string `json:"aud"`
}

// GoogleVerifier validates Google ID tokens against the tokeninfo
// endpoint, the same check the reference frontend relies on.
type GoogleVerifier struct {
	clientID string
	client   *http.Client
}

// NewGoogleVerifier creates a verifier bound to our OAuth client ID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Verify checks an ID token and returns the Google profile.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		tokeninfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleVerification, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGoogleVerification, resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleVerification, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: no email in token", ErrGoogleVerification)
	}
	if v.clientID != "" && profile.Aud != v.clientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrGoogleVerification)
	}
	return &profile, nil
}
