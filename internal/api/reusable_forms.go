package api

import (
	"context"
	"fmt"
	"net/http"
)

// List fetches one page of the account's reusable forms.
func (s ReusableFormsService) List(ctx context.Context, page int) (*ReusableFormList, error) {
	return listReusableForms(ctx, s, page)
}

func listReusableForms(ctx context.Context, r Requester, page int) (*ReusableFormList, error) {
	resp, err := r.Request(ctx, http.MethodGet, "/reusable_form/list", RequestOptions{Params: pageParams(page)})
	if err != nil {
		return nil, err
	}
	var out ReusableFormList
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode reusable form list: %w", err)
	}
	return &out, nil
}

// Get fetches a reusable form by ID.
func (s ReusableFormsService) Get(ctx context.Context, id string) (*ReusableForm, error) {
	return getReusableForm(ctx, s, id)
}

func getReusableForm(ctx context.Context, r Requester, id string) (*ReusableForm, error) {
	path, err := idPath("/reusable_form/", id)
	if err != nil {
		return nil, err
	}
	resp, err := r.Request(ctx, http.MethodGet, path, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeReusableForm(resp)
}

// AddUser gives the account with the given email address access to a form.
func (s ReusableFormsService) AddUser(ctx context.Context, id, emailAddress string) (*ReusableForm, error) {
	return changeFormUser(ctx, s, "/reusable_form/add_user/", id, emailAddress)
}

// RemoveUser revokes the account's access to a form.
func (s ReusableFormsService) RemoveUser(ctx context.Context, id, emailAddress string) (*ReusableForm, error) {
	return changeFormUser(ctx, s, "/reusable_form/remove_user/", id, emailAddress)
}

func changeFormUser(ctx context.Context, r Requester, prefix, id, emailAddress string) (*ReusableForm, error) {
	path, err := idPath(prefix, id)
	if err != nil {
		return nil, err
	}
	if emailAddress == "" {
		return nil, fmt.Errorf("email address is required")
	}
	resp, err := r.Request(ctx, http.MethodPost, path, RequestOptions{
		Body: map[string]any{"email_address": emailAddress},
	})
	if err != nil {
		return nil, err
	}
	return decodeReusableForm(resp)
}

func decodeReusableForm(resp *Response) (*ReusableForm, error) {
	var out ReusableForm
	if err := decodeInto(resp, "reusable_form", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
