package os

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.Mkdir(filepath.Join(home, ".app"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "file"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ok   bool
	}{
		{name: ".app", ok: true},
		{name: ".nope"},
		{name: "file"},
	}
	for _, tt := range tests {
		dir, ok := HomeDir(tt.name)
		if ok != tt.ok {
			t.Errorf("%v: ok %v, want %v", tt.name, ok, tt.ok)
		}
		if ok && dir != filepath.Join(home, tt.name) {
			t.Errorf("%v: wrong dir %v", tt.name, dir)
		}
	}
}
