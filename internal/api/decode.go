package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Key is a canonical response key: lower snake case.
type Key string

// Object is a decoded JSON object with canonical keys.
type Object map[Key]any

const maxInternedKeys = 4096

var keyTable = struct {
	sync.Mutex
	keys map[string]Key
}{keys: make(map[string]Key)}

// CanonicalKey converts a raw key to its canonical form. Surrounding space is
// trimmed, camelCase boundaries, '-' and ' ' become '_', and the result is
// lower-cased. Results are interned so repeated keys share storage.
func CanonicalKey(raw string) Key {
	keyTable.Lock()
	if k, ok := keyTable.keys[raw]; ok {
		keyTable.Unlock()
		return k
	}
	keyTable.Unlock()

	k := Key(canonicalize(raw))

	keyTable.Lock()
	if len(keyTable.keys) < maxInternedKeys {
		keyTable.keys[raw] = k
	}
	keyTable.Unlock()
	return k
}

func canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if isCanonical(s) {
		return s
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	lastUnderscore := false
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ' || r == '_':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		case unicode.IsUpper(r):
			if i > 0 && !lastUnderscore {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		lastUnderscore = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

func isCanonical(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf || c == '-' || c == ' ' || (c >= 'A' && c <= 'Z') {
			return false
		}
		if c == '_' && (i == len(s)-1 || s[i+1] == '_') {
			return false
		}
	}
	return true
}

// DecodeJSON parses a JSON document, rewriting every object key with
// CanonicalKey. Numbers are kept as json.Number.
func DecodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return canonicalValue(v), nil
}

func canonicalValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		obj := make(Object, len(t))
		for k, child := range t {
			obj[CanonicalKey(k)] = canonicalValue(child)
		}
		return obj
	case []any:
		for i, child := range t {
			t[i] = canonicalValue(child)
		}
		return t
	default:
		return v
	}
}

func looksLikeJSON(contentType string, raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
			return true
		}
		if mediaType != "text/plain" && mediaType != "text/javascript" {
			return false
		}
	}
	return trimmed[0] == '{' || trimmed[0] == '['
}

// Response is the decoded result of one API call.
type Response struct {
	StatusCode int
	Header     http.Header
	// Body is the JSON body with canonical keys, or nil when the response is
	// not JSON (for example a PDF).
	Body any
	// Raw is the body as received.
	Raw []byte
}

// Object returns the body when it is a JSON object.
func (r *Response) Object() Object {
	if r == nil {
		return nil
	}
	obj, _ := r.Body.(Object)
	return obj
}

// Decode re-encodes the canonical body into v.
func (r *Response) Decode(v any) error {
	if r == nil || r.Body == nil {
		return fmt.Errorf("response has no JSON body")
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Warning is an entry of the "warnings" array HelloSign attaches to some
// successful responses.
type Warning struct {
	Name    string `json:"warning_name"`
	Message string `json:"warning_msg"`
}

func (r *Response) Warnings() []Warning {
	var out []Warning
	for _, item := range r.Object().Array("warnings") {
		w, ok := item.(Object)
		if !ok {
			continue
		}
		out = append(out, Warning{Name: w.String("warning_name"), Message: w.String("warning_msg")})
	}
	return out
}

// Get walks nested objects by canonical key.
func (o Object) Get(path ...string) any {
	var cur any = o
	for _, p := range path {
		obj, ok := cur.(Object)
		if !ok {
			return nil
		}
		cur, ok = obj[CanonicalKey(p)]
		if !ok {
			return nil
		}
	}
	return cur
}

func (o Object) Object(key string) Object {
	v, _ := o.Get(key).(Object)
	return v
}

func (o Object) Array(key string) []any {
	v, _ := o.Get(key).([]any)
	return v
}

// String returns the value as a string. Numbers and booleans are formatted.
func (o Object) String(key string) string {
	switch v := o.Get(key).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func (o Object) Int(key string) (int64, bool) {
	n, ok := o.Get(key).(json.Number)
	if !ok {
		return 0, false
	}
	v, err := n.Int64()
	return v, err == nil
}

func (o Object) Bool(key string) bool {
	v, _ := o.Get(key).(bool)
	return v
}
