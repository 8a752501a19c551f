package api

import "context"

// Requester is the request surface resource helpers depend on. *Client
// implements it; tests can substitute a recorder to check the method, path
// and options a facade produces without a server.
type Requester interface {
	// Request performs one API call against a version-relative path such
	// as "/signature_request/list".
	Request(ctx context.Context, method, path string, opts RequestOptions) (*Response, error)
}
