package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/iocontext"
)

func newAPICmd() *cobra.Command {
	var (
		method         string
		fields         []string
		rawFields      []string
		params         []string
		attachments    []string
		inputFile      string
		jsonBody       string
		silent         bool
		includeHeaders bool
		noAuth         bool
	)

	cmd := &cobra.Command{
		Use:     "api <endpoint>",
		Aliases: []string{"ap"},
		Short:   "Make raw API requests to any HelloSign endpoint",
		Long: `Make raw API requests to any HelloSign endpoint.

The endpoint is relative to the API version prefix, so "/account" becomes
  https://api.hellosign.com/v3/account

Body fields are sent form-encoded. Nested values from --body, --input or
--raw-field are flattened into bracketed keys such as signers[0][name].
With --attach the request is sent as multipart/form-data.`,
		Example: `  # GET request (default)
  hs api /account

  # POST with fields
  hs api /account -X POST -f callback_url=https://example.com/hook

  # Bracketed keys go through unchanged
  hs api /signature_request/send -X POST \
    -f 'signers[0][name]=Jack' -f 'signers[0][email_address]=jack@example.com' \
    --attach 'file[0]=./nda.pdf'

  # Nested JSON is flattened
  hs api /signature_request/send_with_reusable_form -X POST \
    -d '{"reusable_form_id":"abc","signers":{"Client":{"name":"Jack","email_address":"jack@example.com"}}}'

  # Query parameters
  hs api /signature_request/list -p page=2

  # Endpoints that take no credentials
  hs api /account/create -X POST --no-auth -f email_address=new@example.com -f password=s3cret

  # Show response headers
  hs api /account --include`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			endpoint := args[0]
			out := cmd.OutOrStdout()

			method = strings.ToUpper(method)
			if method != "GET" && method != "POST" {
				return fmt.Errorf("invalid HTTP method %q: must be GET or POST", method)
			}
			if jsonBody != "" && inputFile != "" {
				return fmt.Errorf("cannot use both --body and --input flags")
			}

			body, err := buildRequestBody(cmd, fields, rawFields, inputFile, jsonBody)
			if err != nil {
				return err
			}
			closeFiles, err := addAttachmentFields(body, attachments)
			if err != nil {
				return err
			}
			defer closeFiles()

			query := map[string]string{}
			for _, p := range params {
				key, value, err := parseKeyValue("--param", p)
				if err != nil {
					return err
				}
				query[key] = value
			}

			opts := api.RequestOptions{Params: query, AuthNotRequired: noAuth}
			if len(body) > 0 {
				opts.Body = body
			}

			if dry, err := maybeDryRun(cmd, method, endpoint, opts); dry {
				return err
			}

			var client *api.Client
			if noAuth {
				client = newClientFactory().anonymous()
			} else if client, err = getClient(); err != nil {
				return err
			}

			resp, err := client.Request(cmdContext(cmd), method, endpoint, opts)
			if err != nil {
				return err
			}

			if silent {
				return nil
			}

			if isJSON(cmd) {
				return printJSON(cmd, apiJSONPayload(resp.Raw, resp.Header, resp.StatusCode, includeHeaders))
			}

			if includeHeaders {
				_, _ = fmt.Fprintf(out, "HTTP %d\n", resp.StatusCode)
				keys := make([]string, 0, len(resp.Header))
				for k := range resp.Header {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					for _, v := range resp.Header[k] {
						_, _ = fmt.Fprintf(out, "%s: %s\n", k, v)
					}
				}
				_, _ = fmt.Fprintln(out)
			}

			if len(resp.Raw) > 0 {
				pretty := &bytes.Buffer{}
				if json.Indent(pretty, resp.Raw, "", "  ") == nil {
					_, _ = fmt.Fprintln(out, pretty.String())
					return nil
				}
				_, _ = fmt.Fprintln(out, string(resp.Raw))
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method (GET or POST)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Request body field as key=value (string)")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "Request body field as key=value (JSON parsed)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Query parameter as key=value")
	cmd.Flags().StringArrayVar(&attachments, "attach", nil, "Upload a file as field=path")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read JSON request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&jsonBody, "body", "d", "", "Request body as inline JSON object")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Suppress output")
	cmd.Flags().BoolVar(&includeHeaders, "include", false, "Include response headers in output")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "Send the request without credentials")
	flagAlias(cmd.Flags(), "include", "inc")

	return cmd
}

func apiJSONPayload(respBody []byte, headers map[string][]string, statusCode int, includeHeaders bool) any {
	body := apiJSONBody(respBody)
	if !includeHeaders {
		return body
	}
	return map[string]any{
		"status":  statusCode,
		"headers": headers,
		"body":    body,
	}
}

func apiJSONBody(respBody []byte) any {
	if len(respBody) == 0 {
		return nil
	}
	if !json.Valid(respBody) {
		return string(respBody)
	}
	return json.RawMessage(respBody)
}

// buildRequestBody merges the JSON body (inline or from a file) with -f and
// -F fields. Fields win over the JSON body.
func buildRequestBody(cmd *cobra.Command, fields, rawFields []string, inputFile, jsonBody string) (map[string]any, error) {
	body := make(map[string]any)

	if jsonBody != "" {
		if err := json.Unmarshal([]byte(jsonBody), &body); err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
	}

	if inputFile != "" {
		var inputData []byte
		var err error
		if inputFile == "-" {
			inputData, err = io.ReadAll(iocontext.GetIO(cmd.Context()).In)
		} else {
			inputData, err = os.ReadFile(inputFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if err := json.Unmarshal(inputData, &body); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	for _, field := range fields {
		key, value, err := parseKeyValue("--field", field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	for _, field := range rawFields {
		key, raw, err := parseKeyValue("--raw-field", field)
		if err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
		}
		body[key] = value
	}

	return body, nil
}

// addAttachmentFields opens each field=path and stores it in body as an
// upload part.
func addAttachmentFields(body map[string]any, args []string) (func(), error) {
	if len(args) == 0 {
		return func() {}, nil
	}
	keys := make([]string, 0, len(args))
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		key, path, err := parseKeyValue("--attach", arg)
		if err != nil {
			return func() {}, err
		}
		keys = append(keys, key)
		paths = append(paths, path)
	}
	files, closeFiles, err := openAttachments(paths)
	if err != nil {
		return func() {}, err
	}
	for i, key := range keys {
		body[key] = &files[i]
	}
	return closeFiles, nil
}
