package test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func ProjectRoot() string {
	_, b, _, _ := runtime.Caller(0)
	// Root folder of this project is 3 levels up from this file
	return filepath.Join(filepath.Dir(b), "../..")
}

// Fixture returns the contents of internal/test/testdata/name.
func Fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(ProjectRoot(), "internal", "test", "testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(b)
}
