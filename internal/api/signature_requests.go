package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Send sends a signature request. A request with a ReusableFormID goes to the
// reusable form endpoint with role-keyed signers.
func (s SignatureRequestsService) Send(ctx context.Context, req *SignatureRequest) (*SignatureRequestInfo, error) {
	return sendSignatureRequest(ctx, s, req)
}

func sendSignatureRequest(ctx context.Context, r Requester, req *SignatureRequest) (*SignatureRequestInfo, error) {
	if req == nil {
		return nil, fmt.Errorf("signature request is required")
	}
	resp, err := r.Request(ctx, http.MethodPost, req.Path(), RequestOptions{Body: req.Normalize()})
	if err != nil {
		return nil, err
	}
	return decodeSignatureRequest(resp)
}

// Status fetches a signature request by ID.
func (s SignatureRequestsService) Status(ctx context.Context, id string) (*SignatureRequestInfo, error) {
	return getSignatureRequest(ctx, s, id)
}

func getSignatureRequest(ctx context.Context, r Requester, id string) (*SignatureRequestInfo, error) {
	path, err := idPath("/signature_request/", id)
	if err != nil {
		return nil, err
	}
	resp, err := r.Request(ctx, http.MethodGet, path, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return decodeSignatureRequest(resp)
}

// List fetches one page of signature requests. Pages start at 1; a page
// below 1 requests the first.
func (s SignatureRequestsService) List(ctx context.Context, page int) (*SignatureRequestList, error) {
	return listSignatureRequests(ctx, s, page)
}

func listSignatureRequests(ctx context.Context, r Requester, page int) (*SignatureRequestList, error) {
	resp, err := r.Request(ctx, http.MethodGet, "/signature_request/list", RequestOptions{Params: pageParams(page)})
	if err != nil {
		return nil, err
	}
	var out SignatureRequestList
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode signature request list: %w", err)
	}
	return &out, nil
}

// Remind emails a reminder to the signer with the given address.
func (s SignatureRequestsService) Remind(ctx context.Context, id, emailAddress string) (*SignatureRequestInfo, error) {
	return remindSignatureRequest(ctx, s, id, emailAddress)
}

func remindSignatureRequest(ctx context.Context, r Requester, id, emailAddress string) (*SignatureRequestInfo, error) {
	path, err := idPath("/signature_request/remind/", id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(emailAddress) == "" {
		return nil, fmt.Errorf("email address is required")
	}
	resp, err := r.Request(ctx, http.MethodPost, path, RequestOptions{
		Body: map[string]any{"email_address": emailAddress},
	})
	if err != nil {
		return nil, err
	}
	return decodeSignatureRequest(resp)
}

// Cancel cancels an incomplete signature request.
func (s SignatureRequestsService) Cancel(ctx context.Context, id string) error {
	return cancelSignatureRequest(ctx, s, id)
}

func cancelSignatureRequest(ctx context.Context, r Requester, id string) error {
	path, err := idPath("/signature_request/cancel/", id)
	if err != nil {
		return err
	}
	_, err = r.Request(ctx, http.MethodPost, path, RequestOptions{})
	return err
}

// FinalCopy downloads the signed document as PDF bytes.
func (s SignatureRequestsService) FinalCopy(ctx context.Context, id string) ([]byte, error) {
	return finalCopy(ctx, s, id)
}

func finalCopy(ctx context.Context, r Requester, id string) ([]byte, error) {
	path, err := idPath("/signature_request/final_copy/", id)
	if err != nil {
		return nil, err
	}
	resp, err := r.Request(ctx, http.MethodGet, path, RequestOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Raw, nil
}

func decodeSignatureRequest(resp *Response) (*SignatureRequestInfo, error) {
	var out SignatureRequestInfo
	if err := decodeInto(resp, "signature_request", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func idPath(prefix, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("id is required")
	}
	return prefix + url.PathEscape(id), nil
}

func pageParams(page int) map[string]string {
	if page < 1 {
		page = 1
	}
	return map[string]string{"page": strconv.Itoa(page)}
}
