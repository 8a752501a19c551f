// Package auth runs the local browser page used by "hs auth login --browser".
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/hellosign/hellosign-cli/internal/api"
	"github.com/hellosign/hellosign-cli/internal/validation"
)

// EnvNoBrowser disables opening the browser automatically.
const EnvNoBrowser = "HELLOSIGN_NO_BROWSER"

// Credentials are what the user types into the setup page.
type Credentials struct {
	EmailAddress string
	Password     string
}

// VerifyFunc checks credentials against the API.
type VerifyFunc func(ctx context.Context, creds Credentials) (*api.Account, error)

// SaveFunc persists verified credentials.
type SaveFunc func(creds Credentials) error

// SetupResult is the outcome of a completed browser setup.
type SetupResult struct {
	EmailAddress string
	Account      *api.Account
}

// SetupServer serves the setup page on a loopback port.
type SetupServer struct {
	verify    VerifyFunc
	save      SaveFunc
	out       io.Writer
	csrfToken string

	result   chan SetupResult
	shutdown chan struct{}
	once     sync.Once

	mu            sync.Mutex
	pendingResult *SetupResult
}

// NewSetupServer creates a server that verifies with verify and stores the
// credentials with save. Progress messages go to out.
func NewSetupServer(verify VerifyFunc, save SaveFunc, out io.Writer) (*SetupServer, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	if out == nil {
		out = io.Discard
	}
	return &SetupServer{
		verify:    verify,
		save:      save,
		out:       out,
		csrfToken: hex.EncodeToString(tokenBytes),
		result:    make(chan SetupResult, 1),
		shutdown:  make(chan struct{}),
	}, nil
}

// Handler returns the routes of the setup page.
func (s *SetupServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleSetup)
	mux.HandleFunc("/validate", s.handleValidate)
	mux.HandleFunc("/submit", s.handleSubmit)
	mux.HandleFunc("/success", s.handleSuccess)
	mux.HandleFunc("/complete", s.handleComplete)
	return mux
}

// Start serves the page, opens the browser and blocks until the user
// finishes, cancels or ctx is done.
func (s *SetupServer) Start(ctx context.Context) (*SetupResult, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start server: %w", err)
	}
	pageURL := fmt.Sprintf("http://%s", listener.Addr().String())

	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		_ = server.Serve(listener)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
		}
	}()

	_, _ = fmt.Fprintf(s.out, "Open this URL in your browser to sign in:\n  %s\n", pageURL)
	if err := openBrowser(pageURL); err != nil {
		slog.Debug("browser open failed", "error", err)
		_, _ = fmt.Fprintln(s.out, "Could not open a browser; open the URL manually.")
	}

	select {
	case result := <-s.result:
		return &result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.shutdown:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pendingResult != nil {
			return s.pendingResult, nil
		}
		return nil, fmt.Errorf("setup cancelled")
	}
}

func (s *SetupServer) handleSetup(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tmpl, err := template.New("setup").Parse(setupTemplate)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tmpl.Execute(w, map[string]string{"CSRFToken": s.csrfToken})
}

type credentialsRequest struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// readCredentials enforces POST and the CSRF header, then decodes the body.
// It writes the error response itself and returns ok=false on failure.
func (s *SetupServer) readCredentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return Credentials{}, false
	}
	if r.Header.Get("X-CSRF-Token") != s.csrfToken {
		http.Error(w, "Invalid CSRF token", http.StatusForbidden)
		return Credentials{}, false
	}

	var req credentialsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request body"})
		return Credentials{}, false
	}
	creds := Credentials{EmailAddress: strings.TrimSpace(req.EmailAddress), Password: req.Password}
	if err := validation.ValidateEmail(creds.EmailAddress); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
		return Credentials{}, false
	}
	if creds.Password == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Password is required"})
		return Credentials{}, false
	}
	return creds, true
}

func (s *SetupServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	account, err := s.verify(r.Context(), creds)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": fmt.Sprintf("Sign-in failed: %v", err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Credentials accepted",
		"account_id":    account.AccountID,
		"email_address": account.EmailAddress,
	})
}

func (s *SetupServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.readCredentials(w, r)
	if !ok {
		return
	}
	account, err := s.verify(r.Context(), creds)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": fmt.Sprintf("Sign-in failed: %v", err)})
		return
	}
	if err := s.save(creds); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": fmt.Sprintf("Failed to save credentials: %v", err)})
		return
	}

	s.mu.Lock()
	s.pendingResult = &SetupResult{EmailAddress: creds.EmailAddress, Account: account}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "email_address": creds.EmailAddress})
}

func (s *SetupServer) handleSuccess(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.New("success").Parse(successTemplate)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tmpl.Execute(w, map[string]string{"EmailAddress": r.URL.Query().Get("email")})
}

// handleComplete is called by the success page once it has rendered.
func (s *SetupServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.once.Do(func() {
		s.mu.Lock()
		if s.pendingResult != nil {
			s.result <- *s.pendingResult
		}
		s.mu.Unlock()
		close(s.shutdown)
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func openBrowser(url string) error {
	if shouldSkipAutoBrowserOpen() {
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}
	return cmd.Start()
}

func shouldSkipAutoBrowserOpen() bool {
	if flag.Lookup("test.v") != nil {
		return true
	}
	switch strings.TrimSpace(strings.ToLower(os.Getenv(EnvNoBrowser))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
