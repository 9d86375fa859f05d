// Package twitter is a small client for the three Twitter REST calls the
// follower viewer makes:
//
//   - LookupUser resolves a screen name with a user-context session signed
//     with OAuth 1.0a (github.com/dghubble/oauth1).
//   - ObtainBearerToken runs the client-credentials exchange against
//     /oauth2/token.
//   - FetchFollowers reads one page of /2/users/{id}/followers with the
//     bearer token.
//
// Only a 200 response counts as success. Failures are returned as
// *errors.Error values carrying the upstream status code:
//
//	user, err := client.LookupUser(ctx, session, "alice")
//	var apiErr *errors.Error
//	if stderrors.As(err, &apiErr) && apiErr.Type == errors.ErrorTypeNotFound {
//		// no such account
//	}
package twitter
