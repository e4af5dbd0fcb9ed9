package sync

import (
	"path/filepath"
	"testing"
)

func testRoots() []WatchRoot {
	return []WatchRoot{
		{LocalDir: filepath.FromSlash("/srv/app/data"), RemotePrefix: "data"},
		{LocalDir: filepath.FromSlash("/srv/app/config"), RemotePrefix: "config"},
	}
}

func TestPathMapper_ToRemote(t *testing.T) {
	mapper := NewPathMapper(testRoots())

	tests := []struct {
		local  string
		remote string
		ok     bool
	}{
		{"/srv/app/data/a.txt", "data/a.txt", true},
		{"/srv/app/data/sub/dir/b.json", "data/sub/dir/b.json", true},
		{"/srv/app/config/x.json", "config/x.json", true},
		{"/srv/app/data", "data", true},
		{"/srv/app/other/a.txt", "", false},
		{"/srv/app/database/a.txt", "", false},
		{"/etc/passwd", "", false},
	}
	for _, tt := range tests {
		remote, ok := mapper.ToRemote(filepath.FromSlash(tt.local))
		if ok != tt.ok {
			t.Errorf("ToRemote(%q) ok = %v, want %v", tt.local, ok, tt.ok)
			continue
		}
		if ok && remote != tt.remote {
			t.Errorf("ToRemote(%q) = %q, want %q", tt.local, remote, tt.remote)
		}
	}
}

func TestPathMapper_ToLocal(t *testing.T) {
	roots := testRoots()
	mapper := NewPathMapper(roots)

	local, ok := mapper.ToLocal("data/sub/a.txt", roots[0])
	if !ok {
		t.Fatal("expected mapping for data/sub/a.txt")
	}
	want := filepath.FromSlash("/srv/app/data/sub/a.txt")
	if local != want {
		t.Errorf("ToLocal() = %q, want %q", local, want)
	}

	if _, ok := mapper.ToLocal("other/a.txt", roots[0]); ok {
		t.Error("path outside the root's prefix should not map")
	}
}

func TestPathMapper_RoundTrip(t *testing.T) {
	roots := testRoots()
	mapper := NewPathMapper(roots)

	local := filepath.FromSlash("/srv/app/config/nested/deep/y.json")
	remote, ok := mapper.ToRemote(local)
	if !ok {
		t.Fatal("expected remote mapping")
	}
	back, ok := mapper.ToLocal(remote, roots[1])
	if !ok {
		t.Fatal("expected local mapping")
	}
	if back != local {
		t.Errorf("round trip = %q, want %q", back, local)
	}
}
