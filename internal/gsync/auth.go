package gsync

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// Credentials holds the OAuth material needed for Calendar access. Token
// exchange and consent flows happen outside this system; only an
// already-issued refresh token is consumed here.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// NewAuthenticatedClient builds an HTTP client that refreshes access tokens
// from the stored refresh token as needed.
func NewAuthenticatedClient(ctx context.Context, creds Credentials) *http.Client {
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarEventsScope},
	}
	return cfg.Client(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
}
