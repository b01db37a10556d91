package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var (
	ErrProviderDisabled = errors.New("identity provider is not configured")
	ErrInvalidIdentity  = errors.New("identity token rejected")
)

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier checks Google Sign-In ID tokens issued for the configured client id.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Enabled() bool {
	return v != nil && v.clientID != ""
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if !v.Enabled() {
		return nil, ErrProviderDisabled
	}
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	id := &Identity{
		Email:    claimString(payload.Claims, "email"),
		Name:     claimString(payload.Claims, "name"),
		Picture:  claimString(payload.Claims, "picture"),
		Verified: claimBool(payload.Claims, "email_verified"),
	}
	if id.Email == "" {
		return nil, fmt.Errorf("%w: token has no email", ErrInvalidIdentity)
	}
	return id, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// Google sends email_verified as a bool, older tokens as a string.
func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
