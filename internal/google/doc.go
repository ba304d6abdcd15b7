// Package google handles OAuth2 authentication against Google APIs.
//
// Tokens are cached on disk (access token and refresh token, space
// separated) and refreshed transparently through the oauth2 token source.
// All paths and client credentials are carried in a Config so callers can
// point the package at test fixtures instead of the real cache directory.
package google
