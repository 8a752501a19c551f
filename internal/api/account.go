package api

import (
	"context"
	"fmt"
	"net/http"
)

// Get gets the account details.
func (s AccountService) Get(ctx context.Context) (*Account, error) {
	return getAccount(ctx, s)
}

func getAccount(ctx context.Context, r Requester) (*Account, error) {
	resp, err := r.Request(ctx, http.MethodGet, "/account", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeAccount(resp)
}

// Update sets the account's event callback URL.
func (s AccountService) Update(ctx context.Context, callbackURL string) (*Account, error) {
	return updateAccount(ctx, s, callbackURL)
}

func updateAccount(ctx context.Context, r Requester, callbackURL string) (*Account, error) {
	resp, err := r.Request(ctx, http.MethodPost, "/account", RequestOptions{
		Body: map[string]any{"callback_url": callbackURL},
	})
	if err != nil {
		return nil, err
	}
	return decodeAccount(resp)
}

// Create signs up a new account. The call is made without credentials.
func (s AccountService) Create(ctx context.Context, emailAddress, password string) (*Account, error) {
	return createAccount(ctx, s, emailAddress, password)
}

func createAccount(ctx context.Context, r Requester, emailAddress, password string) (*Account, error) {
	if emailAddress == "" {
		return nil, fmt.Errorf("email address is required")
	}
	body := map[string]any{"email_address": emailAddress}
	if password != "" {
		body["password"] = password
	}
	resp, err := r.Request(ctx, http.MethodPost, "/account/create", RequestOptions{
		Body:            body,
		AuthNotRequired: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeAccount(resp)
}

func decodeAccount(resp *Response) (*Account, error) {
	var out Account
	if err := decodeInto(resp, "account", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
