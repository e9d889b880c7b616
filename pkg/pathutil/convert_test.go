package pathutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		path, root, want string
	}{
		{"/repo/src/main.go", "/repo", "src/main.go"},
		{"./src/main.go", "", "src/main.go"},
		{"src/main.go", "", "src/main.go"},
		{"", "/repo", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.path, c.root); got != c.want {
			t.Errorf("Normalize(%q,%q) = %q, want %q", c.path, c.root, got, c.want)
		}
	}
}

func TestToRelative(t *testing.T) {
	if got := ToRelative("/home/user/project/src/main.go", "/home/user/project"); got != "src/main.go" {
		t.Errorf("got %q", got)
	}
	if got := ToRelative("/other/file.go", "/home/user/project"); got != "/other/file.go" {
		t.Errorf("expected outside-root fallback, got %q", got)
	}
	if got := ToRelative("src/main.go", "/home/user/project"); got != "src/main.go" {
		t.Errorf("expected already-relative passthrough, got %q", got)
	}
}

func TestDirAndStem(t *testing.T) {
	if got := Dir("internal/lsh/minhash.go"); got != "internal/lsh" {
		t.Errorf("Dir = %q", got)
	}
	if got := Dir("main.go"); got != "." {
		t.Errorf("Dir top-level = %q", got)
	}
	if got := Stem("internal/lsh/minhash.go"); got != "minhash" {
		t.Errorf("Stem = %q", got)
	}
}
