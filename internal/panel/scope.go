package panel

import (
	"sync"

	"linkbox-cli/internal/store"
)

// Scope names the list every store and editor call operates on.
type Scope struct {
	Folder *store.Folder
	Key    string
}

func ScopeFor(folder *store.Folder) Scope {
	return Scope{Folder: folder, Key: store.ResolveStorageKey(folder)}
}

func (s Scope) IsGlobal() bool { return s.Key == store.GlobalKey }

// ScopeTracker follows which folder the user is working in.
//
// A focus event that names a folder switches to it. A focus event without one
// keeps the current scope once there is one; before that it falls back to the
// first workspace folder, or the global list when there are no folders.
type ScopeTracker struct {
	mu      sync.Mutex
	folders []*store.Folder
	active  *Scope
}

func NewScopeTracker(folders []*store.Folder) *ScopeTracker {
	return &ScopeTracker{folders: append([]*store.Folder(nil), folders...)}
}

func (t *ScopeTracker) Focus(folder *store.Folder) Scope {
	t.mu.Lock()
	defer t.mu.Unlock()
	if folder != nil {
		s := ScopeFor(folder)
		t.active = &s
		return s
	}
	return t.resolveLocked()
}

// SetFolders replaces the workspace folder list. The current scope survives
// even when its folder is no longer listed.
func (t *ScopeTracker) SetFolders(folders []*store.Folder) Scope {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.folders = append([]*store.Folder(nil), folders...)
	return t.resolveLocked()
}

func (t *ScopeTracker) Current() Scope {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolveLocked()
}

func (t *ScopeTracker) Folders() []*store.Folder {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*store.Folder(nil), t.folders...)
}

func (t *ScopeTracker) resolveLocked() Scope {
	if t.active != nil {
		return *t.active
	}
	var first *store.Folder
	if len(t.folders) > 0 {
		first = t.folders[0]
	}
	s := ScopeFor(first)
	t.active = &s
	return s
}
