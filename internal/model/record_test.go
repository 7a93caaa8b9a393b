package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecord_SetOnce(t *testing.T) {
	r := NewRecord()
	if r.ID() == "" {
		t.Fatal("expected a session id")
	}

	if err := r.Set(FieldGroup, "control"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	err := r.Set(FieldGroup, "differential")
	if !errors.Is(err, ErrFieldExists) {
		t.Fatalf("expected ErrFieldExists, got %v", err)
	}

	v, _ := r.Get(FieldGroup)
	if v != "control" {
		t.Errorf("group = %v, want control", v)
	}

	r.SetIfAbsent(FieldGroup, "other")
	if v, _ := r.Get(FieldGroup); v != "control" {
		t.Errorf("SetIfAbsent overwrote field: %v", v)
	}
}

func TestRecord_AppendDeduplicates(t *testing.T) {
	r := NewRecord()
	key := HypothesesKey(0)
	if err := r.Append(key, "Pneumonia", "Bronchitis"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := r.Append(key, "Bronchitis", "Asthma", "Asthma"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	var got []string
	if err := r.Decode(key, &got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []string{"Pneumonia", "Bronchitis", "Asthma"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("hypotheses = %v, want %v", got, want)
	}

	keys := r.Keys()
	if len(keys) != 2 || keys[1] != key {
		t.Errorf("keys = %v", keys)
	}
}

func TestRecord_JSONKeepsOrder(t *testing.T) {
	r := NewRecord()
	_ = r.Set(FieldGroup, "differential")
	_ = r.Set(StartTimeKey(1), Timestamp(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	_ = r.Append(HypothesesKey(1), "Pneumonia")
	_ = r.Set(AIHelpKey(1, "resp-1"), AIHelp{Condition: ConditionDifferential, Citations: []string{"fever"}})

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	text := string(data)
	order := []string{`"session_id"`, `"group"`, `"case_1_start_time"`, `"case_1_hypotheses"`, `"case_1_ai_help_resp-1"`}
	last := -1
	for _, k := range order {
		i := strings.Index(text, k)
		if i <= last {
			t.Fatalf("key %s out of order in %s", k, text)
		}
		last = i
	}
	if !strings.Contains(text, `"2024-05-01T10:00:00Z"`) {
		t.Errorf("timestamp not RFC3339 UTC: %s", text)
	}

	loaded := &Record{}
	if err := json.Unmarshal(data, loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if loaded.ID() != r.ID() {
		t.Errorf("ID = %q, want %q", loaded.ID(), r.ID())
	}
	if strings.Join(loaded.Keys(), ",") != strings.Join(r.Keys(), ",") {
		t.Errorf("keys = %v, want %v", loaded.Keys(), r.Keys())
	}

	var help AIHelp
	if err := loaded.Decode(AIHelpKey(1, "resp-1"), &help); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if help.Condition != ConditionDifferential || len(help.Citations) != 1 {
		t.Errorf("decoded help = %+v", help)
	}

	// Appending to a loaded list field extends the stored values
	if err := loaded.Append(HypothesesKey(1), "Asthma", "Pneumonia"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	var hyps []string
	_ = loaded.Decode(HypothesesKey(1), &hyps)
	if strings.Join(hyps, ",") != "Pneumonia,Asthma" {
		t.Errorf("hypotheses = %v", hyps)
	}

	keys := loaded.AIHelpKeys()
	if len(keys) != 1 || keys[0] != AIHelpKey(1, "resp-1") {
		t.Errorf("AIHelpKeys = %v", keys)
	}
}

func TestRecord_UnmarshalRejectsNonObject(t *testing.T) {
	r := &Record{}
	if err := json.Unmarshal([]byte(`[1,2]`), r); err == nil {
		t.Error("expected error for array record")
	}
}

func TestRecord_DecodeMissing(t *testing.T) {
	var v string
	if err := NewRecord().Decode("nope", &v); err == nil {
		t.Error("expected error for missing field")
	}
}

func TestRecord_AppendNeverReplacesNonList(t *testing.T) {
	r := NewRecord()
	_ = r.Set(FieldModel, "gpt-4o")

	err := r.Append(FieldModel, "gpt-4-turbo")
	if !errors.Is(err, ErrFieldExists) {
		t.Fatalf("expected ErrFieldExists, got %v", err)
	}
	if v, _ := r.Get(FieldModel); v != "gpt-4o" {
		t.Errorf("field replaced: %v", v)
	}

	loaded := &Record{}
	if err := json.Unmarshal([]byte(`{"session_id":"s","case_0_hypotheses":{"a":1}}`), loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if err := loaded.Append(HypothesesKey(0), "Pneumonia"); !errors.Is(err, ErrFieldExists) {
		t.Fatalf("expected ErrFieldExists for raw non-array field, got %v", err)
	}
	var raw map[string]int
	if err := loaded.Decode(HypothesesKey(0), &raw); err != nil || raw["a"] != 1 {
		t.Errorf("raw field changed: %v, %v", raw, err)
	}
}

func TestRecord_AppendOpensEmptyList(t *testing.T) {
	r := NewRecord()
	if err := r.Append(HypothesesKey(2)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	data, _ := json.Marshal(r)
	if !strings.Contains(string(data), `"case_2_hypotheses":[]`) {
		t.Errorf("expected empty list, got %s", data)
	}
}
