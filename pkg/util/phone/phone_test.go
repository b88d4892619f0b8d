package phone

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"us national", "(415) 555-2671", "+14155552671", false},
		{"already e164", "+14155552671", "+14155552671", false},
		{"with spaces", " 415 555 2671 ", "+14155552671", false},
		{"international", "+44 20 7946 0958", "+442079460958", false},
		{"empty passes through", "", "", false},
		{"garbage", "not-a-number", "", true},
		{"too short", "12", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !Valid("+14155552671") {
		t.Error("expected valid number")
	}
	if Valid("") {
		t.Error("empty input is not a valid number")
	}
	if Valid("abc") {
		t.Error("garbage is not a valid number")
	}
}
