package api

import (
	"context"
	"fmt"
	"net/http"
)

// Create uploads a draft and returns the URL where it can be claimed.
func (s UnclaimedDraftsService) Create(ctx context.Context, draft *UnclaimedDraft) (*UnclaimedDraftInfo, error) {
	if draft == nil {
		return nil, fmt.Errorf("unclaimed draft is required")
	}
	resp, err := s.Request(ctx, http.MethodPost, "/unclaimed_draft/create", RequestOptions{Body: draft.Normalize()})
	if err != nil {
		return nil, err
	}
	var out UnclaimedDraftInfo
	if err := decodeInto(resp, "unclaimed_draft", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
