package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{
			name:        "loads reset partial",
			styleName:   "reset",
			wantContain: "border-collapse",
		},
		{
			name:        "loads button partial",
			styleName:   "button",
			wantContain: ".button",
		},
		{
			name:      "returns ErrStyleNotFound for nonexistent",
			styleName: "nonexistent-partial-xyz",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "returns ErrInvalidAssetName for empty name",
			styleName: "",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "returns ErrInvalidAssetName for path traversal",
			styleName: "../secret",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:        "accepts sass partial spelling",
			styleName:   "_reset.scss",
			wantContain: "border-collapse",
		},
		{
			name:      "returns ErrInvalidAssetName for inner dot",
			styleName: "reset.min",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content, err := loader.LoadStyle(tt.styleName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(content, tt.wantContain) {
				t.Errorf("content should contain %q", tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_ListStyles(t *testing.T) {
	t.Parallel()

	names := NewEmbeddedLoader().ListStyles()

	want := []string{"button", "reset", "typography"}
	if len(names) != len(want) {
		t.Fatalf("ListStyles() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListStyles()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestEmbeddedLoader_ResolveImport(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name    string
		url     string
		wantOK  bool
		wantErr error
	}{
		{"namespaced partial resolves", "postcard/reset", true, nil},
		{"namespaced missing partial fails", "postcard/missing", true, ErrStyleNotFound},
		{"namespaced traversal rejected", "postcard/../x", true, ErrInvalidAssetName},
		{"plain import is left to the compiler", "partials/header", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content, ok, err := loader.ResolveImport(tt.url)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantOK && tt.wantErr == nil && content == "" {
				t.Error("expected partial content")
			}
		})
	}
}

func TestPartialName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"reset", "reset", false},
		{"_reset", "reset", false},
		{"reset.scss", "reset", false},
		{"_my-partial.scss", "my-partial", false},
		{"partial_2", "partial_2", false},
		{"", "", true},
		{"_", "", true},
		{".scss", "", true},
		{"a/b", "", true},
		{"a\\b", "", true},
		{"..", "", true},
		{"a.b", "", true},
	}

	for _, tt := range tests {
		got, err := PartialName(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("PartialName(%q) error = %v, want ErrInvalidAssetName", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("PartialName(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PartialName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
