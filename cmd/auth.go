package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/spotify-grabber/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long: `Manage authorization for the Spotify Web API.

Use 'auth login' to grant access in a browser and save a refresh token.`,
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authLoginCmd = &cobra.Command{
		Use:   "login",
		Short: "Authorize spotify-grabber and save a refresh token",
		Long: `Opens a browser window with the Spotify consent page.

Before logging in, register an application at https://developer.spotify.com/dashboard,
add the redirect URI from your configuration (default http://127.0.0.1:8898/callback)
and put its client_id and client_secret into the configuration file.

The login process:
1. Browser opens the Spotify consent page
2. Log in to your Spotify account
3. Click "Agree" to grant access
4. Wait for the confirmation page

The refresh token is then saved to the configuration file and used by every download.

You can then download music:
spotify-grabber https://open.spotify.com/album/4LH4d3cOWNNsVw41Gqt2kv`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthLoginCommand(cmd.Context(), appConfig)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	authCmd.AddCommand(authLoginCmd)
	rootCmd.AddCommand(authCmd)
}
