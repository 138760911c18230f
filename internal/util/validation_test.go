package util

import (
	"sort"
	"testing"
)

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("valid UUID rejected: %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); err == nil {
		t.Error("invalid UUID accepted")
	}
	if err := ValidateUUID(""); err == nil {
		t.Error("empty string accepted")
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"customer@example.com", false},
		{"a.b+tag@sub.example.co", false},
		{"no-at-sign", true},
		{"Display Name <customer@example.com>", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://eu.fsm.cloud.sap", false},
		{"http://localhost:8080", false},
		{"ftp://example.com", true},
		{"https://", true},
		{"not a url at all\x7f", true},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestRequireFields(t *testing.T) {
	missing := RequireFields(map[string]string{
		"accountId":   "acc",
		"companyId":   "",
		"clientId":    "   ",
		"cloudHost":   "eu.fsm.cloud.sap",
		"companyName": "ACME",
	})
	sort.Strings(missing)
	if len(missing) != 2 || missing[0] != "clientId" || missing[1] != "companyId" {
		t.Errorf("unexpected missing fields: %v", missing)
	}

	if missing := RequireFields(map[string]string{"a": "x"}); missing != nil {
		t.Errorf("expected nil for complete fields, got %v", missing)
	}
}

func TestValidatePortRange(t *testing.T) {
	if err := ValidatePortRange(8080); err != nil {
		t.Errorf("valid port rejected: %v", err)
	}
	if err := ValidatePortRange(0); err == nil {
		t.Error("port 0 accepted")
	}
	if err := ValidatePortRange(70000); err == nil {
		t.Error("port 70000 accepted")
	}
}
