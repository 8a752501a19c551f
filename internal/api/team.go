package api

import (
	"context"
	"fmt"
	"net/http"
)

// Get gets the team the account belongs to.
func (s TeamService) Get(ctx context.Context) (*Team, error) {
	return teamCall(ctx, s, http.MethodGet, "/team", nil)
}

// Create creates a team with the account as its only member.
func (s TeamService) Create(ctx context.Context, name string) (*Team, error) {
	if name == "" {
		return nil, fmt.Errorf("team name is required")
	}
	return teamCall(ctx, s, http.MethodPost, "/team/create", map[string]any{"name": name})
}

// Update renames the team.
func (s TeamService) Update(ctx context.Context, name string) (*Team, error) {
	if name == "" {
		return nil, fmt.Errorf("team name is required")
	}
	return teamCall(ctx, s, http.MethodPost, "/team", map[string]any{"name": name})
}

// Destroy deletes the team. Members keep their accounts.
func (s TeamService) Destroy(ctx context.Context) error {
	_, err := s.Request(ctx, http.MethodPost, "/team/destroy", RequestOptions{})
	return err
}

// AddMember invites an account to the team.
func (s TeamService) AddMember(ctx context.Context, emailAddress string) (*Team, error) {
	if emailAddress == "" {
		return nil, fmt.Errorf("email address is required")
	}
	return teamCall(ctx, s, http.MethodPost, "/team/add_member", map[string]any{"email_address": emailAddress})
}

// RemoveMember removes an account from the team.
func (s TeamService) RemoveMember(ctx context.Context, emailAddress string) (*Team, error) {
	if emailAddress == "" {
		return nil, fmt.Errorf("email address is required")
	}
	return teamCall(ctx, s, http.MethodPost, "/team/remove_member", map[string]any{"email_address": emailAddress})
}

func teamCall(ctx context.Context, r Requester, method, path string, body map[string]any) (*Team, error) {
	opts := RequestOptions{}
	if body != nil {
		opts.Body = body
	}
	resp, err := r.Request(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}
	var out Team
	if err := decodeInto(resp, "team", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
