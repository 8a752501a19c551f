package api

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// formBody is a request body flattened to wire keys.
type formBody struct {
	Values url.Values
	Files  []filePart
}

type filePart struct {
	Field      string
	Attachment *Attachment
}

// flattenBody flattens a nested body into bracketed form keys:
// {"signers": [{"name": "Jack"}]} becomes signers[0][name]=Jack and
// {"ccs": {"lawyer": {...}}} becomes ccs[lawyer][...]. Map keys are emitted in
// sorted order and slices by position. Attachments are collected as file parts.
func flattenBody(body any) (*formBody, error) {
	form := &formBody{Values: url.Values{}}
	switch b := body.(type) {
	case nil:
		return form, nil
	case url.Values:
		for k, vs := range b {
			form.Values[k] = append(form.Values[k], vs...)
		}
		return form, nil
	case map[string]any, map[string]string:
		if err := form.flatten("", b); err != nil {
			return nil, err
		}
		return form, nil
	default:
		return nil, fmt.Errorf("unsupported request body type %T", body)
	}
}

func (f *formBody) flatten(prefix string, v any) error {
	switch t := v.(type) {
	case nil:
		return nil
	case *Attachment:
		if t == nil {
			return nil
		}
		f.Files = append(f.Files, filePart{Field: prefix, Attachment: t})
		return nil
	case Attachment:
		f.Files = append(f.Files, filePart{Field: prefix, Attachment: &t})
		return nil
	case map[string]any:
		for _, k := range sortedKeys(t) {
			if err := f.flatten(joinKey(prefix, k), t[k]); err != nil {
				return err
			}
		}
		return nil
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			f.Values.Add(joinKey(prefix, k), t[k])
		}
		return nil
	case []any:
		for i, item := range t {
			if err := f.flatten(indexKey(prefix, i), item); err != nil {
				return err
			}
		}
		return nil
	case []map[string]any:
		for i, item := range t {
			if err := f.flatten(indexKey(prefix, i), item); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for i, item := range t {
			f.Values.Add(indexKey(prefix, i), item)
		}
		return nil
	case []Attachment:
		for i := range t {
			f.Files = append(f.Files, filePart{Field: indexKey(prefix, i), Attachment: &t[i]})
		}
		return nil
	case []*Attachment:
		for i, a := range t {
			if a != nil {
				f.Files = append(f.Files, filePart{Field: indexKey(prefix, i), Attachment: a})
			}
		}
		return nil
	}

	if prefix == "" {
		return fmt.Errorf("form body must be a map, got %T", v)
	}
	s, err := formScalar(v)
	if err != nil {
		return fmt.Errorf("field %s: %w", prefix, err)
	}
	f.Values.Add(prefix, s)
	return nil
}

func formScalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		if t {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported form value %T", v)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "[" + key + "]"
}

func indexKey(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecodeForm rebuilds the nested structure from bracketed form keys. Objects
// whose keys are exactly 0..n-1 become arrays. For repeated keys the last
// value wins.
func DecodeForm(values url.Values) map[string]any {
	root := map[string]any{}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vs := values[key]
		if len(vs) == 0 {
			continue
		}
		segments := splitFormKey(key)
		node := root
		for i, seg := range segments {
			if i == len(segments)-1 {
				node[seg] = vs[len(vs)-1]
				break
			}
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[seg] = child
			}
			node = child
		}
	}

	out, _ := collapseArrays(root).(map[string]any)
	return out
}

// splitFormKey splits "a[b][0]" into ["a", "b", "0"].
func splitFormKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}
	segments := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			segments[len(segments)-1] += rest
			break
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	return segments
}

func collapseArrays(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		m[k] = collapseArrays(child)
	}
	if len(m) == 0 {
		return m
	}
	arr := make([]any, len(m))
	for k, child := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(m) || strconv.Itoa(i) != k {
			return m
		}
		arr[i] = child
	}
	return arr
}
