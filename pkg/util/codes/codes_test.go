package codes

import (
	"encoding/hex"
	"testing"
)

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}

	if len(token) != SessionTokenByteLength*2 {
		t.Errorf("GenerateSessionToken() length = %d, want %d", len(token), SessionTokenByteLength*2)
	}

	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("GenerateSessionToken() not valid hex: %v", err)
	}

	// Tokens must be unique
	other, _ := GenerateSessionToken()
	if token == other {
		t.Error("GenerateSessionToken() produced duplicate token")
	}
}

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken() error = %v", err)
	}

	if len(token) != ResetTokenByteLength*2 {
		t.Errorf("GenerateResetToken() length = %d, want %d", len(token), ResetTokenByteLength*2)
	}
}

func TestGenerateSecureToken(t *testing.T) {
	tests := []struct {
		name       string
		byteLength int
		wantLen    int
		wantErr    error
	}{
		{"16 bytes", 16, 32, nil},
		{"1 byte", 1, 2, nil},
		{"zero bytes", 0, 0, ErrInvalidLength},
		{"negative", -1, 0, ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureToken(tt.byteLength)
			if err != tt.wantErr {
				t.Fatalf("GenerateSecureToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("GenerateSecureToken() length = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestGenerateNumericCode(t *testing.T) {
	code, err := GenerateNumericCode(6)
	if err != nil {
		t.Fatalf("GenerateNumericCode() error = %v", err)
	}

	if len(code) != 6 {
		t.Errorf("GenerateNumericCode(6) length = %d, want 6", len(code))
	}

	for _, r := range code {
		if r < '0' || r > '9' {
			t.Errorf("GenerateNumericCode() contains non-digit %q", r)
		}
	}

	if _, err := GenerateNumericCode(0); err != ErrInvalidLength {
		t.Errorf("GenerateNumericCode(0) error = %v, want %v", err, ErrInvalidLength)
	}
}

func TestGenerateResetOTP(t *testing.T) {
	otp, err := GenerateResetOTP()
	if err != nil {
		t.Fatalf("GenerateResetOTP() error = %v", err)
	}
	if len(otp) != ResetOTPLength {
		t.Errorf("GenerateResetOTP() length = %d, want %d", len(otp), ResetOTPLength)
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  ABCDEF  ", "abcdef"},
		{"a1B2c3", "a1b2c3"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
