package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goliatone/go-formflow/pkg/formdoc"
	"github.com/goliatone/go-formflow/pkg/model"
)

// FormsDir returns the absolute path of the shared form fixtures
// (testdata/forms at the module root).
func FormsDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("testdata", "forms")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata", "forms")
}

// FormPath resolves a fixture name such as "contact.json" inside FormsDir.
func FormPath(name string) string {
	return filepath.Join(FormsDir(), name)
}

// MustLoadForm parses a shared fixture by name and fails the test on error.
func MustLoadForm(t *testing.T, name string) model.Form {
	t.Helper()

	form, err := LoadForm(FormPath(name))
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadForm parses a form document from path, returning an error for callers
// managing setup outside of *testing.T.
func LoadForm(path string) (model.Form, error) {
	if path == "" {
		return model.Form{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Form{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	form, err := formdoc.Parse(data, path)
	if err != nil {
		return model.Form{}, fmt.Errorf("testsupport: parse form: %w", err)
	}
	return form, nil
}

// MustReadFile returns the raw bytes of a shared fixture.
func MustReadFile(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FormPath(name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}
