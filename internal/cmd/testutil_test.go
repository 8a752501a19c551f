// Test utilities for the hs commands.
//
// Commands run against an httptest server through the environment:
// setupTestEnvWithHandler points HELLOSIGN_BASE_URL at the server and supplies
// credentials through HELLOSIGN_EMAIL_ADDRESS and HELLOSIGN_PASSWORD, so no
// keyring is involved. Routes include the /v3 version prefix:
//
//	handler := newRouteHandler().
//	    On("GET", "/v3/account", jsonResponse(200, `{"account": {"account_id": "a1"}}`))
//	setupTestEnvWithHandler(t, handler)
//
//	output := captureStdout(t, func() {
//	    if err := Execute(context.Background(), []string{"account", "get"}); err != nil {
//	        t.Fatalf("command failed: %v", err)
//	    }
//	})
//
// To inspect what a command sent, record the request with formRecorder.
package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/99designs/keyring"

	"github.com/hellosign/hellosign-cli/internal/config"
)

const (
	testEmail    = "jack@example.com"
	testPassword = "s3cret-password"
)

// captureStdout executes a function and captures its stdout output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	<-done
	return buf.String()
}

// captureStderr executes a function and captures its stderr output.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	_ = w.Close()
	os.Stderr = old
	<-done
	return buf.String()
}

// withStdin replaces os.Stdin with a pipe holding input.
func withStdin(t *testing.T, input string) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	_, _ = w.WriteString(input)
	_ = w.Close()
	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		_ = r.Close()
	})
}

// withSharedKeyring makes every keyring open in the test return the same
// in-memory ring.
func withSharedKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	cleanup := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(cleanup)
	return ring
}

// testEnv gives access to the mock server.
type testEnv struct {
	t      *testing.T
	server *httptest.Server
}

// setupTestEnvWithHandler starts a mock server and configures credentials,
// base URL and a private cache directory for the duration of the test.
func setupTestEnvWithHandler(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv(config.EnvBaseURL, server.URL)
	t.Setenv(config.EnvEmailAddress, testEmail)
	t.Setenv(config.EnvPassword, testPassword)
	t.Setenv(envCacheDir, t.TempDir())
	t.Setenv("HELLOSIGN_OUTPUT", "text")

	return &testEnv{t: t, server: server}
}

// setupTestEnv is setupTestEnvWithHandler with a single handler for every request.
func setupTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()
	return setupTestEnvWithHandler(t, handler)
}

// jsonResponse creates an http.HandlerFunc that returns a JSON response with
// the given status and body.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes requests by exact "METHOD PATH". Unknown routes get 404.
type routeHandler struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
}

func newRouteHandler() *routeHandler {
	return &routeHandler{
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string]int),
	}
}

// On registers a handler for the given HTTP method and path.
func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

// Calls reports how many requests hit the route.
func (rh *routeHandler) Calls(method, path string) int {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	return rh.calls[method+" "+path]
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	rh.mu.Lock()
	rh.calls[key]++
	handler, ok := rh.routes[key]
	rh.mu.Unlock()
	if ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// recordedRequest is what a formRecorder saw.
type recordedRequest struct {
	ContentType string
	Form        url.Values
	Files       map[string]string
	User        string
	Password    string
	HasAuth     bool
}

// formRecorder parses the request (urlencoded or multipart) into rec before
// delegating to next.
func formRecorder(rec *recordedRequest, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec.ContentType = r.Header.Get("Content-Type")
		rec.User, rec.Password, rec.HasAuth = r.BasicAuth()
		rec.Files = map[string]string{}
		if strings.HasPrefix(rec.ContentType, "multipart/form-data") {
			if err := r.ParseMultipartForm(10 << 20); err == nil {
				rec.Form = r.MultipartForm.Value
				for field, headers := range r.MultipartForm.File {
					if len(headers) > 0 {
						rec.Files[field] = headers[0].Filename
					}
				}
			}
		} else if err := r.ParseForm(); err == nil {
			rec.Form = r.PostForm
		}
		next(w, r)
	}
}

func TestTestInfrastructure(t *testing.T) {
	t.Run("setupTestEnv sets environment variables", func(t *testing.T) {
		env := setupTestEnv(t, jsonResponse(200, `{"status": "ok"}`))

		if os.Getenv(config.EnvBaseURL) != env.server.URL {
			t.Error("HELLOSIGN_BASE_URL not set correctly")
		}
		if os.Getenv(config.EnvEmailAddress) != testEmail {
			t.Error("HELLOSIGN_EMAIL_ADDRESS not set correctly")
		}
		if os.Getenv(envCacheDir) == "" {
			t.Error("HELLOSIGN_CACHE_DIR not set")
		}
	})

	t.Run("routeHandler routes requests correctly", func(t *testing.T) {
		handler := newRouteHandler().
			On("GET", "/v3/test", jsonResponse(200, `{"method": "get"}`)).
			On("POST", "/v3/test", jsonResponse(201, `{"method": "post"}`))

		env := setupTestEnvWithHandler(t, handler)

		resp, err := http.Get(env.server.URL + "/v3/test")
		if err != nil {
			t.Fatalf("GET request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}

		resp, err = http.Post(env.server.URL+"/v3/test", "application/x-www-form-urlencoded", nil)
		if err != nil {
			t.Fatalf("POST request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 201 {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}

		resp, err = http.Get(env.server.URL + "/v3/unknown")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("expected status 404 for unknown route, got %d", resp.StatusCode)
		}
		if handler.Calls("GET", "/v3/test") != 1 {
			t.Errorf("expected 1 call, got %d", handler.Calls("GET", "/v3/test"))
		}
	})
}
