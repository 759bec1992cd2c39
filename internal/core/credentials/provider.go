package credentials

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/obinna-dev/drivesage/internal/core"
)

var _ core.CredentialProvider = (*GoogleProvider)(nil)

// GoogleProvider loads a user's stored Google token pair and refreshes
// it through the OAuth endpoint when expired. Tokens are looked up fresh
// on every call; nothing is cached beyond the call, so a revoked or
// rotated credential takes effect immediately.
type GoogleProvider struct {
	db  core.DbClient
	cfg *oauth2.Config
}

func NewGoogleProvider(db core.DbClient, clientID, clientSecret string) *GoogleProvider {
	return &GoogleProvider{
		db: db,
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
		},
	}
}

// Credential returns a valid access token for the user, refreshing and
// persisting it first when the stored one has expired.
func (p *GoogleProvider) Credential(ctx context.Context, userID string) (*oauth2.Token, error) {
	user, err := p.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if user == nil || user.GoogleRefreshToken == "" {
		return nil, core.ErrCredentialUnavailable
	}

	tok := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
		Expiry:       user.GoogleTokenExpiry,
		TokenType:    "Bearer",
	}
	if tok.Valid() {
		return tok, nil
	}

	fresh, err := p.cfg.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh failed: %v", core.ErrCredentialUnavailable, err)
	}

	if err := p.db.UpdateUserGoogleToken(ctx, userID, fresh.AccessToken, fresh.RefreshToken, fresh.Expiry); err != nil {
		return nil, fmt.Errorf("persist refreshed token for %s: %w", userID, err)
	}
	return fresh, nil
}
