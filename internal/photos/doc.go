// Package photos provides an HTTP client for the gallery API.
//
// # Overview
//
// The gallery serves photos from two read endpoints:
//
//   - GET /api/photos?tag=&camera=&lens=&orderBy=&order=&hidden=&limit=&offset=
//     returns {"data": [...]} with at most limit records
//   - GET /api/photos/{id} returns a single record, 404 when missing
//
// A page shorter than the requested limit is the only end-of-data signal;
// the API has no total count.
//
// # Types
//
//   - APIPhoto: transport record, decoded straight from JSON
//   - Photo: domain record produced by APIPhoto.Deserialize, which is pure
//     and never fails
//   - Params: listing filter and sort parameters; Params.Fingerprint is the
//     cache key used by pagecache
//
// # Errors
//
// Non-2xx responses become *APIError, carrying the server's "message" when
// the body has one. FetchPhoto maps 404 to ErrNotFound. ErrorMessage picks
// the text to show a user.
//
// # Interfaces
//
// PageFetcher is the paged fetch contract shared by pagecache and
// navigation; Fetcher adds single-photo lookup. *Client implements both and
// tests substitute fakes.
package photos
