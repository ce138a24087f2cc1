package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ConfigError
		wantMsg string
	}{
		{
			name:    "translation and reason",
			err:     &ConfigError{Translation: "NIV", Reason: "no bundled assets"},
			wantMsg: "configuration error for translation NIV: no bundled assets",
		},
		{
			name:    "reason only",
			err:     &ConfigError{Reason: "manifest missing"},
			wantMsg: "configuration error: manifest missing",
		},
		{
			name:    "bare",
			err:     &ConfigError{},
			wantMsg: "configuration error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrConfig) {
				t.Errorf("errors.Is(%v, ErrConfig) = false", tt.err)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("checksum mismatch")
		err := &ConfigError{Translation: "KJV", Reason: "corpus asset", Err: underlyingErr}
		want := "configuration error for translation KJV: corpus asset: checksum mismatch"
		if got := err.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !errors.Is(err, underlyingErr) {
			t.Error("errors.Is did not match the underlying error")
		}
		if !errors.Is(err, ErrConfig) {
			t.Error("errors.Is did not match ErrConfig")
		}
	})
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "translation", ID: "KJV"},
			wantMsg:  "translation not found: KJV",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "manifest"},
			wantMsg:  "manifest not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "file", ID: "kjv.corpus.json.xz", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with field",
			err:      &ValidationError{Field: "books[0].number", Message: "duplicate book number 1"},
			wantMsg:  "validation failed for books[0].number: duplicate book number 1",
			wantBase: ErrInvalidInput,
		},
		{
			name:     "without field",
			err:      &ValidationError{Message: "empty corpus"},
			wantMsg:  "validation failed: empty corpus",
			wantBase: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	baseErr := fmt.Errorf("permission denied")
	tests := []struct {
		name    string
		err     *IOError
		wantMsg string
	}{
		{
			name:    "with path",
			err:     &IOError{Operation: "read", Path: "kjv.index.json.xz", Err: baseErr},
			wantMsg: "failed to read kjv.index.json.xz: permission denied",
		},
		{
			name:    "without path",
			err:     &IOError{Operation: "write", Err: baseErr},
			wantMsg: "failed to write: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, baseErr) {
				t.Errorf("Unwrap() = %v, want %v", got, baseErr)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ParseError
		wantMsg string
	}{
		{
			name:    "with path",
			err:     &ParseError{Format: "corpus", Path: "kjv.corpus.json", Message: "unexpected EOF"},
			wantMsg: "failed to parse corpus at kjv.corpus.json: unexpected EOF",
		},
		{
			name:    "without path",
			err:     &ParseError{Format: "reference", Message: "unknown book \"Hezekiah\""},
			wantMsg: "failed to parse reference: unknown book \"Hezekiah\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Errorf("errors.Is(%v, ErrInvalidInput) = false", tt.err)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("json: unexpected token")
		err := &ParseError{Format: "index", Message: "invalid syntax", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestUnsupportedError(t *testing.T) {
	tests := []struct {
		name    string
		err     *UnsupportedError
		wantMsg string
	}{
		{
			name:    "with reason",
			err:     &UnsupportedError{Feature: "import format", Reason: "osis not implemented"},
			wantMsg: "unsupported import format: osis not implemented",
		},
		{
			name:    "without reason",
			err:     &UnsupportedError{Feature: "format"},
			wantMsg: "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrUnsupported) {
				t.Errorf("errors.Is(%v, ErrUnsupported) = false", tt.err)
			}
		})
	}
}

func TestHelperFunctions(t *testing.T) {
	t.Run("NewConfig", func(t *testing.T) {
		err := NewConfig("ESV", "no bundled assets")
		if err.Translation != "ESV" || err.Reason != "no bundled assets" {
			t.Errorf("NewConfig() = %+v, unexpected values", err)
		}
	})

	t.Run("NewNotFound", func(t *testing.T) {
		err := NewNotFound("translation", "KJV")
		if err.Resource != "translation" || err.ID != "KJV" {
			t.Errorf("NewNotFound() = %+v, want Resource=translation, ID=KJV", err)
		}
	})

	t.Run("NewValidation", func(t *testing.T) {
		err := NewValidation("limit", "must be positive")
		if err.Field != "limit" || err.Message != "must be positive" {
			t.Errorf("NewValidation() = %+v, unexpected values", err)
		}
	})

	t.Run("NewIO", func(t *testing.T) {
		baseErr := fmt.Errorf("disk full")
		err := NewIO("write", "/tmp/assets", baseErr)
		if err.Operation != "write" || err.Path != "/tmp/assets" || err.Err != baseErr {
			t.Errorf("NewIO() = %+v, unexpected values", err)
		}
	})

	t.Run("NewParse", func(t *testing.T) {
		err := NewParse("YAML", "config.yaml", "invalid syntax")
		if err.Format != "YAML" || err.Path != "config.yaml" || err.Message != "invalid syntax" {
			t.Errorf("NewParse() = %+v, unexpected values", err)
		}
	})

	t.Run("NewUnsupported", func(t *testing.T) {
		err := NewUnsupported("format", "not compiled in")
		if err.Feature != "format" || err.Reason != "not compiled in" {
			t.Errorf("NewUnsupported() = %+v, unexpected values", err)
		}
	})
}

func TestWrap(t *testing.T) {
	t.Run("wraps error", func(t *testing.T) {
		baseErr := fmt.Errorf("base error")
		wrapped := Wrap(baseErr, "context message")
		if !errors.Is(wrapped, baseErr) {
			t.Errorf("Wrap() error does not unwrap to base error")
		}
		wantMsg := "context message: base error"
		if wrapped.Error() != wantMsg {
			t.Errorf("Wrap() = %q, want %q", wrapped.Error(), wantMsg)
		}
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		if got := Wrap(nil, "context"); got != nil {
			t.Errorf("Wrap(nil) = %v, want nil", got)
		}
	})
}

func TestWrapf(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	wrapped := Wrapf(baseErr, "loading %s", "KJV")
	wantMsg := "loading KJV: base error"
	if wrapped.Error() != wantMsg {
		t.Errorf("Wrapf() = %q, want %q", wrapped.Error(), wantMsg)
	}
	if got := Wrapf(nil, "context %s", "test"); got != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", got)
	}
}

func TestIsAsJoin(t *testing.T) {
	err := Wrap(NewConfig("NIV", "missing"), "get loader")
	if !Is(err, ErrConfig) {
		t.Error("Is() failed to match wrapped ConfigError to ErrConfig")
	}
	var cfgErr *ConfigError
	if !As(err, &cfgErr) {
		t.Fatal("As() failed to match ConfigError")
	}
	if cfgErr.Translation != "NIV" {
		t.Errorf("As() cfgErr.Translation = %q, want NIV", cfgErr.Translation)
	}

	joined := Join(NewNotFound("translation", "A"), NewConfig("B", "missing"))
	if !Is(joined, ErrNotFound) || !Is(joined, ErrConfig) {
		t.Errorf("Join() = %v, want both ErrNotFound and ErrConfig", joined)
	}
	if Join() != nil {
		t.Error("Join() with no errors should be nil")
	}
}
