package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	// Configure both env vars for cross-platform behavior of os.UserHomeDir.
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	sub := "test-sub"
	exp, err := ExpandHome("~/" + sub)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if runtime.GOOS == "windows" {
		if filepath.Base(exp) != sub {
			t.Fatalf("unexpected expanded path: %q", exp)
		}
	} else {
		expected := filepath.Join(home, sub)
		if exp != expected {
			t.Fatalf("expected %q, got %q", expected, exp)
		}
	}
}

func TestPathExists(t *testing.T) {
	d := t.TempDir()
	if !PathExists(d) {
		t.Fatalf("expected %s to exist", d)
	}
	if PathExists(filepath.Join(d, "missing.json")) {
		t.Fatalf("expected missing file to not exist")
	}
}

func TestDecodeFile_ByExtension(t *testing.T) {
	type doc struct {
		Name  string   `json:"name" yaml:"name" toml:"name"`
		Items []string `json:"items" yaml:"items" toml:"items"`
	}
	d := t.TempDir()
	files := map[string]string{
		"a.json": `{"name":"x","items":["S1","S2"]}`,
		"a.yaml": "name: x\nitems: [S1, S2]\n",
		"a.yml":  "name: x\nitems:\n  - S1\n  - S2\n",
		"a.toml": "name = \"x\"\nitems = [\"S1\", \"S2\"]\n",
	}
	for name, content := range files {
		p := filepath.Join(d, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		var got doc
		if err := DecodeFile(p, &got); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got.Name != "x" || len(got.Items) != 2 || got.Items[1] != "S2" {
			t.Fatalf("%s: unexpected %+v", name, got)
		}
	}
}

func TestDecodeFile_Errors(t *testing.T) {
	var v map[string]any
	if err := DecodeFile("", &v); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := filepath.Join(d, "a.txt")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := DecodeFile(p, &v); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	bad := filepath.Join(d, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := DecodeFile(bad, &v); err == nil {
		t.Fatalf("expected decode error")
	}
}
