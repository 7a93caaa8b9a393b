package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ErrFieldExists is returned when a record field would be overwritten
var ErrFieldExists = errors.New("record field already set")

// Well-known record fields
const (
	FieldSessionID = "session_id"
	FieldGroup     = "group"
	FieldModel     = "model"
)

// HypothesesKey is the field holding every hypothesis entered for a case
func HypothesesKey(caseIndex int) string {
	return fmt.Sprintf("case_%d_hypotheses", caseIndex)
}

// AIHelpKey is the field holding one assisted interaction for a case
func AIHelpKey(caseIndex int, responseID string) string {
	return fmt.Sprintf("case_%d_ai_help_%s", caseIndex, responseID)
}

// StartTimeKey is the field holding the time a case was opened
func StartTimeKey(caseIndex int) string {
	return fmt.Sprintf("case_%d_start_time", caseIndex)
}

// EndTimeKey is the field holding the time a case was completed
func EndTimeKey(caseIndex int) string {
	return fmt.Sprintf("case_%d_end_time", caseIndex)
}

// Record is the append-only result record of one participant session.
// Fields keep their insertion order when exported.
type Record struct {
	mu     sync.Mutex
	keys   []string
	fields map[string]any
}

// NewRecord creates an empty record with a fresh session id
func NewRecord() *Record {
	r := &Record{fields: make(map[string]any)}
	r.fields[FieldSessionID] = uuid.NewString()
	r.keys = append(r.keys, FieldSessionID)
	return r
}

// ID returns the session id
func (r *Record) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch id := r.fields[FieldSessionID].(type) {
	case string:
		return id
	case json.RawMessage:
		var s string
		_ = json.Unmarshal(id, &s)
		return s
	}
	return ""
}

// Set writes a field once; existing fields are never overwritten
func (r *Record) Set(key string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fields[key]; exists {
		return fmt.Errorf("%w: %s", ErrFieldExists, key)
	}
	r.fields[key] = value
	r.keys = append(r.keys, key)
	return nil
}

// SetIfAbsent writes a field only if it is not already present
func (r *Record) SetIfAbsent(key string, value any) {
	_ = r.Set(key, value)
}

// Append adds values to a list field, skipping values already present.
// A field that already holds something other than a list is left untouched.
func (r *Record) Append(key string, values ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.fields[key]
	list, ok := toStrings(current)
	if exists && !ok {
		return fmt.Errorf("%w: %s is not a list", ErrFieldExists, key)
	}
	if !exists {
		r.keys = append(r.keys, key)
	}
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			list = append(list, v)
		}
	}
	if list == nil {
		list = []string{}
	}
	r.fields[key] = list
	return nil
}

// Get returns a field value
func (r *Record) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.fields[key]
	return v, ok
}

// Keys returns the field names in insertion order
func (r *Record) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// Decode decodes a field into out, whatever its in-memory representation
func (r *Record) Decode(key string, out any) error {
	v, ok := r.Get(key)
	if !ok {
		return fmt.Errorf("record field not found: %s", key)
	}
	raw, ok := v.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal field %s: %w", key, err)
		}
		raw = b
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode field %s: %w", key, err)
	}
	return nil
}

// AIHelpKeys returns the assisted-interaction field names in insertion order
func (r *Record) AIHelpKeys() []string {
	var out []string
	for _, k := range r.Keys() {
		if strings.HasPrefix(k, "case_") && strings.Contains(k, "_ai_help_") {
			out = append(out, k)
		}
	}
	return out
}

// MarshalJSON writes the fields in insertion order
func (r *Record) MarshalJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON loads a previously exported record, keeping field order
func (r *Record) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid record JSON")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return fmt.Errorf("record must be a JSON object")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = nil
	r.fields = make(map[string]any)
	parsed.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, dup := r.fields[k]; !dup {
			r.keys = append(r.keys, k)
		}
		r.fields[k] = json.RawMessage(value.Raw)
		return true
	})
	return nil
}

// Timestamp formats a record time the way fields store it
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case nil:
		return nil, true
	case []string:
		return append([]string(nil), list...), true
	case json.RawMessage:
		var out []string
		if err := json.Unmarshal(list, &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}
