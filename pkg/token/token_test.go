package token

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tok, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(tok) < MinTokenLength {
		t.Errorf("Generate() token length = %d, want >= %d", len(tok), MinTokenLength)
	}

	// Tokens are embedded in URL paths; no padding or reserved characters.
	if strings.ContainsAny(tok, "=+/") {
		t.Errorf("Generate() token contains URL-unsafe characters: %q", tok)
	}

	tok2, _ := Generate()
	if tok == tok2 {
		t.Error("Generate() produced duplicate tokens")
	}
}

func TestGenerateWithLength(t *testing.T) {
	tests := []struct {
		name      string
		numBytes  int
		wantErr   bool
		minLength int
	}{
		{"default length", DefaultTokenBytes, false, MinTokenLength},
		{"longer token", 48, false, 60},
		{"too short", 16, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := GenerateWithLength(tt.numBytes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateWithLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(tok) < tt.minLength {
				t.Errorf("GenerateWithLength() token length = %d, want >= %d", len(tok), tt.minLength)
			}
		})
	}
}

func TestHashAndValidate(t *testing.T) {
	const secret = "test-secret-key-0123456789abcdef"

	tok, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	hash := Hash(tok, secret)
	if len(hash) != 64 {
		t.Errorf("Hash() length = %d, want 64 hex characters", len(hash))
	}
	if hash == Hash(tok, "different-secret") {
		t.Error("Hash() ignores the secret")
	}

	if !Validate(tok, secret, hash) {
		t.Error("Validate() rejected the correct token")
	}
	if Validate("wrong-token-wrong-token-wrong-token-wrong-1", secret, hash) {
		t.Error("Validate() accepted a wrong token")
	}
}

func TestValidateLength(t *testing.T) {
	if err := ValidateLength("short"); err == nil {
		t.Error("ValidateLength() accepted a short token")
	}

	tok, _ := Generate()
	if err := ValidateLength(tok); err != nil {
		t.Errorf("ValidateLength() rejected a generated token: %v", err)
	}
}
