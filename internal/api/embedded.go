package api

import (
	"context"
	"net/http"
)

// SignURL returns a short-lived URL for signing in an embedded iframe.
func (s EmbeddedService) SignURL(ctx context.Context, signatureID string) (*EmbeddedSignURL, error) {
	path, err := idPath("/embedded/sign_url/", signatureID)
	if err != nil {
		return nil, err
	}
	resp, err := s.Request(ctx, http.MethodGet, path, RequestOptions{})
	if err != nil {
		return nil, err
	}
	var out EmbeddedSignURL
	if err := decodeInto(resp, "embedded", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
