package credentials

import (
	"github.com/desertthunder/playrelay/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes is the minimal scope set for reading and changing playback state.
var Scopes = []string{
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
}

// NewOAuthConfig builds the [oauth2.Config] for the authorization-code flow.
//
// Client credentials are sent with HTTP Basic auth on every token request.
func NewOAuthConfig(creds shared.SpotifyConfig, api shared.SpotifyAPIConfig) *oauth2.Config {
	authURL, tokenURL := api.AuthURL, api.TokenURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}
