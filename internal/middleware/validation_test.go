package middleware

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{"valid uuid", "7f9c24e8-3b2a-4f6d-9e1c-8a5b3d7c2f10", "7f9c24e8-3b2a-4f6d-9e1c-8a5b3d7c2f10", false},
		{"uppercase normalized", "7F9C24E8-3B2A-4F6D-9E1C-8A5B3D7C2F10", "7f9c24e8-3b2a-4f6d-9e1c-8a5b3d7c2f10", false},
		{"trims whitespace", "  7f9c24e8-3b2a-4f6d-9e1c-8a5b3d7c2f10  ", "7f9c24e8-3b2a-4f6d-9e1c-8a5b3d7c2f10", false},
		{"empty", "", "", true},
		{"not a uuid", "video-123", "", true},
		{"sql injection", "a'; DROP--", "", true},
		{"truncated uuid", "7f9c24e8-3b2a-4f6d", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateVideoID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.wantID {
				t.Errorf("got %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "user_abc-123", false},
		{"exactly 64 chars", strings.Repeat("a", 64), false},
		{"too long", strings.Repeat("a", 65), true},
		{"empty", "", true},
		{"spaces", "user abc", true},
		{"unicode", "usér", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errMsg := ValidateUserID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
		})
	}
}

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"empty defaults to 1", "", 1, false},
		{"valid", "3", 3, false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "abc", 0, true},
		{"huge", "99999999999", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidatePage(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidatePageSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"empty defaults", "", DefaultPageSize, false},
		{"valid", "50", 50, false},
		{"max allowed", "100", 100, false},
		{"above max", "101", 0, true},
		{"zero", "0", 0, true},
		{"not a number", "ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidatePageSize(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	if _, errMsg := ValidateTitle(""); errMsg == "" {
		t.Error("empty title accepted")
	}
	if _, errMsg := ValidateTitle(strings.Repeat("x", 121)); errMsg == "" {
		t.Error("overlong title accepted")
	}
	got, errMsg := ValidateTitle("  My Video  ")
	if errMsg != "" || got != "My Video" {
		t.Errorf("got %q (err=%q), want trimmed title", got, errMsg)
	}
}

func TestValidateDescription_Truncates(t *testing.T) {
	long := strings.Repeat("d", 600)
	got := ValidateDescription(long)
	if len(got) != MaxDescriptionLen {
		t.Errorf("truncated length = %d, want %d", len(got), MaxDescriptionLen)
	}
	if ValidateDescription("") != "" {
		t.Error("empty description should stay empty")
	}
}

func TestValidateDescription_TruncatesOnRuneBoundary(t *testing.T) {
	// 200 three-byte runes = 600 bytes; byte 500 lands mid-rune.
	long := strings.Repeat("日", 200)
	got := ValidateDescription(long)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated description is not valid UTF-8: %q", got[len(got)-6:])
	}
	if len(got) > MaxDescriptionLen {
		t.Errorf("truncated length = %d, want <= %d", len(got), MaxDescriptionLen)
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncated description is not a prefix of the input")
	}
}
