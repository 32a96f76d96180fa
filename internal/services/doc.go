// Package services implements the [Catalogue] interface against The Movie Database (TMDB) v3 API.
//
// # Authentication
//
// [TMDBService] sends the configured API read access token as a bearer token through an
// [oauth2.StaticTokenSource] client. A missing key or the placeholder from the example config is
// rejected with [shared.ErrMissingCredentials] before any request is made.
//
// [TMDBService.IssueToken] requests a fresh request token from /authentication/token/new. It is
// the token issuer used by the session store at login.
//
// # Categories
//
// Listings are grouped into named categories (see [Categories]). Each maps to an endpoint and a
// fixed set of query parameters; every request also carries the configured language and the page.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : no usable API key
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrMovieNotFound] : /movie/{id} returned 404
//
// Requests are never retried.
//
// # Images
//
// [ImageURL] builds artwork URLs from the image CDN base and a size table per artwork kind.
package services
