package templateguard_test

import (
	"testing"

	templateguard "github.com/templateguard/templateguard"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		in      string
		want    templateguard.Version
		wantErr bool
	}{
		{in: "1.0", want: templateguard.Version{Major: 1, Minor: 0}},
		{in: "2.13", want: templateguard.Version{Major: 2, Minor: 13}},
		{in: " 1.1 ", want: templateguard.Version{Major: 1, Minor: 1}},
		{in: "1", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "-1.0", wantErr: true},
		{in: "1.x", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := templateguard.ParseVersion(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseVersion(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseVersion(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseVersion(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestVersionOrder(t *testing.T) {
	v10 := templateguard.Version{Major: 1, Minor: 0}
	v11 := templateguard.Version{Major: 1, Minor: 1}
	v20 := templateguard.Version{Major: 2, Minor: 0}

	if !v10.Less(v11) || !v11.Less(v20) {
		t.Fatalf("expected 1.0 < 1.1 < 2.0")
	}
	if v11.Compare(v11) != 0 {
		t.Fatalf("expected 1.1 == 1.1")
	}
	// Minor never outranks major.
	if (templateguard.Version{Major: 1, Minor: 9}).Compare(v20) >= 0 {
		t.Fatalf("expected 1.9 < 2.0")
	}
	if v20.String() != "2.0" {
		t.Fatalf("String() = %q, want %q", v20.String(), "2.0")
	}
}
