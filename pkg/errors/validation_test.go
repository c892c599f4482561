package errors

import (
	"testing"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "widgets", false},
		{"valid plugin file", "widgets/widgets.php", false},
		{"valid with dot", "my.theme", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLocale(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"de_DE", false},
		{"de", false},
		{"pt_BR", false},
		{"de_DE_formal", false},
		{"es_419", false},
		{"fil", false},

		{"", true},
		{"DE_de", true},
		{"de-DE", true},
		{"../etc", true},
		{"de_DE ", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateLocale(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocale(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLocale) {
				t.Errorf("ValidateLocale(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLocale)
			}
		})
	}
}

func TestValidatePackagePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute in repo", "/languages/de_DE.zip", false},
		{"relative", "languages/de_DE.zip", false},

		{"empty", "", true},
		{"traversal", "/../../secret.zip", true},
		{"backslash", "\\languages\\de.zip", true},
		{"control", "/lang\x01.zip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackagePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackagePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://git.example.com", false},
		{"http://localhost:3000", false},
		{"", true},
		{"ftp://example.com", true},
		{"git.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
