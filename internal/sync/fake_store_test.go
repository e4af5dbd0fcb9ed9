package sync

import (
	"fmt"
	stdsync "sync"
	"time"

	"storemirror/internal/store"
)

// fakeStore is an in-memory store.Store with call counters and failure
// injection for engine tests.
type fakeStore struct {
	mu       stdsync.Mutex
	files    map[string][]byte
	modTimes map[string]time.Time
	dirs     map[string]bool

	existsCalls int
	writeCalls  int
	mkdirCalls  int
	deleteCalls int

	unreachable bool
	failWrites  int
	failLists   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files:    make(map[string][]byte),
		modTimes: make(map[string]time.Time),
		dirs:     make(map[string]bool),
	}
}

func (f *fakeStore) Exists(path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	if f.unreachable {
		return false, fmt.Errorf("store unreachable")
	}
	if path == "" {
		return true, nil
	}
	_, isFile := f.files[path]
	return isFile || f.dirs[path], nil
}

func (f *fakeStore) Stat(path string) (store.EntryInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unreachable {
		return store.EntryInfo{}, fmt.Errorf("store unreachable")
	}
	if data, ok := f.files[path]; ok {
		return store.EntryInfo{Name: baseName(path), Size: int64(len(data)), ModTime: f.modTimes[path]}, nil
	}
	if f.dirs[path] {
		return store.EntryInfo{Name: baseName(path), IsDir: true}, nil
	}
	return store.EntryInfo{}, store.ErrNotFound
}

func (f *fakeStore) List(path string) ([]store.EntryInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unreachable {
		return nil, fmt.Errorf("store unreachable")
	}
	if f.failLists[path] {
		return nil, fmt.Errorf("listing failed")
	}

	var entries []store.EntryInfo
	seen := make(map[string]bool)
	add := func(child string, isDir bool, size int64, mod time.Time) {
		if seen[child] {
			return
		}
		seen[child] = true
		entries = append(entries, store.EntryInfo{Name: child, IsDir: isDir, Size: size, ModTime: mod})
	}

	for p, data := range f.files {
		if child, direct := childOf(path, p); direct {
			add(child, false, int64(len(data)), f.modTimes[p])
		} else if child != "" {
			add(child, true, 0, time.Time{})
		}
	}
	for p := range f.dirs {
		if child, direct := childOf(path, p); direct {
			add(child, true, 0, time.Time{})
		} else if child != "" {
			add(child, true, 0, time.Time{})
		}
	}
	return entries, nil
}

func (f *fakeStore) Read(path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (f *fakeStore) Write(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if f.failWrites > 0 {
		f.failWrites--
		return fmt.Errorf("simulated write failure")
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	f.files[path] = stored
	f.modTimes[path] = time.Now()
	return nil
}

func (f *fakeStore) Mkdir(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mkdirCalls++
	f.dirs[path] = true
	return nil
}

func (f *fakeStore) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	delete(f.files, path)
	delete(f.modTimes, path)
	return nil
}

func (f *fakeStore) counts() (writes, mkdirs, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCalls, f.mkdirCalls, f.deleteCalls
}

func (f *fakeStore) content(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	return data, ok
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

// childOf reports the next path segment of p below dir. The second return
// is true when p is a direct child.
func childOf(dir, p string) (string, bool) {
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
		if len(p) <= len(prefix) || p[:len(prefix)] != prefix {
			return "", false
		}
	}
	rest := p[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '/' {
			return rest[:i], false
		}
	}
	return rest, true
}
