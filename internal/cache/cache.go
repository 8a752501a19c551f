// Package cache keeps short-lived copies of list responses (reusable forms)
// so repeated lookups skip the API.
//
// Entries are JSON, scoped per resource, API host and account. The default
// TTL is 5 minutes. Entries live in files under the user cache directory, or
// in Redis when HELLOSIGN_CACHE_REDIS_URL is set. Disable with
// HELLOSIGN_NO_CACHE=1.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultTTL = 5 * time.Minute

	envNoCache  = "HELLOSIGN_NO_CACHE"
	envRedisURL = "HELLOSIGN_CACHE_REDIS_URL"
)

// Store reads and writes one cache entry. Misses and write failures are
// silent: the cache never turns a working command into a failing one.
type Store interface {
	// Get loads the cached items into dst. It returns false on a miss.
	Get(ctx context.Context, dst any) bool
	Put(ctx context.Context, items any)
	Clear(ctx context.Context)
}

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Items    json.RawMessage `json:"items"`
}

func encodeEntry(items any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entry{CachedAt: now, Items: raw})
}

func decodeEntry(data []byte, ttl time.Duration, dst any) bool {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if time.Since(e.CachedAt) > ttl {
		return false
	}
	return json.Unmarshal(e.Items, dst) == nil
}

// scope identifies the account an entry belongs to without storing the
// email address in the clear.
func scope(baseURL, account string) string {
	hash := sha1.Sum([]byte(strings.TrimSuffix(baseURL, "/") + "|" + strings.ToLower(account)))
	return hex.EncodeToString(hash[:6])
}

// FileStore keeps one entry in a JSON file.
type FileStore struct {
	path string
	ttl  time.Duration
}

// NewFileStore creates a FileStore. dir is the cache directory (typically
// from DefaultDir), key the resource (e.g. "reusable_forms").
func NewFileStore(dir, key, baseURL, account string, ttl time.Duration) *FileStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	filename := sanitizeKey(key) + "_" + scope(baseURL, account) + ".json"
	return &FileStore{
		path: filepath.Join(dir, filename),
		ttl:  ttl,
	}
}

func (s *FileStore) Get(_ context.Context, dst any) bool {
	if disabled() {
		return false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return decodeEntry(data, s.ttl, dst)
}

func (s *FileStore) Put(_ context.Context, items any) {
	if disabled() {
		return
	}
	data, err := encodeEntry(items, time.Now())
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}

	// Atomic-ish write: write temp then rename.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return
	}
	_ = os.Rename(tmp, s.path)
}

func (s *FileStore) Clear(_ context.Context) {
	_ = os.Remove(s.path)
}

// ClearDir removes all cache files from the directory. Only files matching
// the cache filename scheme are touched.
func ClearDir(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}

// DefaultDir returns the platform cache directory for the CLI.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "hellosign-cli"), nil
}

// Open returns the store for key: Redis when HELLOSIGN_CACHE_REDIS_URL is
// set, otherwise a file under dir.
func Open(dir, key, baseURL, account string) (Store, error) {
	if url := strings.TrimSpace(os.Getenv(envRedisURL)); url != "" {
		return NewRedisStoreFromURL(url, key, baseURL, account, DefaultTTL)
	}
	return NewFileStore(dir, key, baseURL, account, DefaultTTL), nil
}

func disabled() bool {
	return os.Getenv(envNoCache) != ""
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	key = strings.ReplaceAll(key, "/", "-")
	key = strings.ReplaceAll(key, "\\", "-")
	return key
}

func isCacheFilename(name string) bool {
	// Expected: "<key>_<12hex>.json"
	if filepath.Ext(name) != ".json" {
		return false
	}
	base := strings.TrimSuffix(name, ".json")
	i := strings.LastIndexByte(base, '_')
	if i <= 0 {
		return false
	}
	suffix := base[i+1:]
	return len(suffix) == 12 && isHex(suffix)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
