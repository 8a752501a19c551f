package api

import (
	"fmt"
	"io"
	"net/url"

	"github.com/go-resty/resty/v2"
)

const formContentType = "application/x-www-form-urlencoded"

// RequestOptions are the per-call inputs of Client.Request.
type RequestOptions struct {
	// Params are appended to the URL as the query string.
	Params map[string]string
	// Body is the already-normalized payload. Maps are flattened into bracketed
	// form keys; a string, []byte or io.Reader is sent as-is.
	Body any
	// AuthNotRequired skips the basic auth stage.
	AuthNotRequired bool
}

// call carries the state of one request through its stages.
type call struct {
	opts    RequestOptions
	req     *resty.Request
	form    *formBody
	encoded bool
}

type (
	requestStage  func(*call) error
	responseStage func(*Response) error
)

// formBody returns the flattened body, computing it on first use.
func (cl *call) formBody() (*formBody, error) {
	if cl.form != nil {
		return cl.form, nil
	}
	form, err := flattenBody(cl.opts.Body)
	if err != nil {
		return nil, err
	}
	cl.form = form
	return form, nil
}

// requestStages returns the request side of the pipeline in application order:
// auth, multipart, url-encoded. The auth stage must precede the encoders.
func (c *Client) requestStages(opts RequestOptions) []requestStage {
	stages := make([]requestStage, 0, 3)
	if !opts.AuthNotRequired {
		stages = append(stages, c.basicAuth)
	}
	return append(stages, encodeMultipart, encodeURLEncoded)
}

// responseStages returns the response side of the pipeline. Decoding is last.
func (c *Client) responseStages() []responseStage {
	return []responseStage{c.recordRateLimit, decodeBody}
}

func (c *Client) basicAuth(cl *call) error {
	cl.req.SetBasicAuth(c.credentials.EmailAddress, c.credentials.Password)
	return nil
}

// encodeMultipart sends the body as multipart/form-data when it carries at
// least one attachment. Every attachment becomes one file part.
func encodeMultipart(cl *call) error {
	if cl.encoded || cl.opts.Body == nil || isRawBody(cl.opts.Body) {
		return nil
	}
	form, err := cl.formBody()
	if err != nil {
		return err
	}
	if len(form.Files) == 0 {
		return nil
	}
	for _, part := range form.Files {
		if part.Attachment.Content == nil {
			return fmt.Errorf("attachment %q for %s has no content", part.Attachment.Name, part.Field)
		}
		cl.req.SetMultipartField(part.Field, part.Attachment.Name, part.Attachment.contentType(), part.Attachment.Content)
	}
	if len(form.Values) > 0 {
		cl.req.SetFormDataFromValues(form.Values)
	}
	cl.encoded = true
	return nil
}

// encodeURLEncoded sends any body not already encoded as
// application/x-www-form-urlencoded.
func encodeURLEncoded(cl *call) error {
	if cl.encoded || cl.opts.Body == nil {
		return nil
	}
	switch raw := cl.opts.Body.(type) {
	case string, []byte, io.Reader:
		cl.req.SetHeader("Content-Type", formContentType).SetBody(raw)
		cl.encoded = true
		return nil
	}
	form, err := cl.formBody()
	if err != nil {
		return err
	}
	cl.req.SetFormDataFromValues(form.Values)
	cl.encoded = true
	return nil
}

func isRawBody(body any) bool {
	switch body.(type) {
	case string, []byte, io.Reader:
		return true
	}
	return false
}

// decodeBody canonicalizes a JSON response body into Response.Body.
func decodeBody(resp *Response) error {
	if !looksLikeJSON(resp.Header.Get("Content-Type"), resp.Raw) {
		return nil
	}
	body, err := DecodeJSON(resp.Raw)
	if err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	resp.Body = body
	return nil
}

// FormValues flattens a request body into the url-encoded wire form without
// sending it. Attachments are listed by field name with their file names.
func FormValues(body any) (url.Values, error) {
	form, err := flattenBody(body)
	if err != nil {
		return nil, err
	}
	values := url.Values{}
	for k, vs := range form.Values {
		values[k] = append([]string(nil), vs...)
	}
	for _, part := range form.Files {
		values.Add(part.Field, "@"+part.Attachment.Name)
	}
	return values, nil
}
