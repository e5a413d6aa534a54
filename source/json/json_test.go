package json_test

import (
	"os"
	"path/filepath"
	"testing"

	jsonsrc "github.com/templateguard/templateguard/source/json"
)

func TestDecodeNormalizesNumbers(t *testing.T) {
	m, err := jsonsrc.Decode([]byte(`{
		"cohort": "2026-spring",
		"repetitions": 3,
		"threshold": 0.5,
		"features": ["a", 4, {"range": {"start": 0, "end": 5}}]
	}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v, ok := m["repetitions"].(int64); !ok || v != 3 {
		t.Fatalf("repetitions = %#v, want int64(3)", m["repetitions"])
	}
	if v, ok := m["threshold"].(float64); !ok || v != 0.5 {
		t.Fatalf("threshold = %#v, want float64(0.5)", m["threshold"])
	}
	list := m["features"].([]any)
	if v, ok := list[1].(int64); !ok || v != 4 {
		t.Fatalf("features[1] = %#v, want int64(4)", list[1])
	}
	rng := list[2].(map[string]any)["range"].(map[string]any)
	if v, ok := rng["end"].(int64); !ok || v != 5 {
		t.Fatalf("range end = %#v, want int64(5)", rng["end"])
	}
}

func TestDecodeRejectsNonObjectRoot(t *testing.T) {
	for _, in := range []string{`[1, 2]`, `"scalar"`, `42`} {
		if _, err := jsonsrc.Decode([]byte(in)); err == nil {
			t.Fatalf("Decode(%s): expected error", in)
		}
	}
	if _, err := jsonsrc.Decode([]byte(`{broken`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"cohort": "a"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := jsonsrc.DecodeFile(path)
	if err != nil || m["cohort"] != "a" {
		t.Fatalf("DecodeFile = %v, %v", m, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := map[string]any{"version": "1.0", "fields": map[string]any{"cohort": "string"}}
	data, err := jsonsrc.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := jsonsrc.Decode(data)
	if err != nil {
		t.Fatalf("Decode(Encode()): %v", err)
	}
	if out["version"] != "1.0" {
		t.Fatalf("version lost in round trip: %#v", out)
	}
}
