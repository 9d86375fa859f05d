package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCredentialsGuide explains where the four API secrets come from
func ShowCredentialsGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "TWITTER API CREDENTIALS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "twfollowers needs the keys of a Twitter developer app:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Open https://developer.twitter.com/en/portal/dashboard")
	fmt.Fprintln(w, "  2. Select your project and app, then 'Keys and tokens'")
	fmt.Fprintln(w, "  3. Under 'Consumer Keys' copy the API Key and API Key Secret")
	fmt.Fprintln(w, "  4. Under 'Authentication Tokens' generate an Access Token and Secret")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The consumer pair is exchanged for an app-only bearer token to list")
	fmt.Fprintln(w, "followers; all four sign the per-account lookups.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Instead of storing them you may export %s, %s,\n", EnvConsumerKey, EnvConsumerSecret)
	fmt.Fprintf(w, "%s and %s, or put them in a .env file.\n", EnvAccessToken, EnvAccessTokenSecret)
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
