package store

import (
	"net/url"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// GlobalKey holds the link list used when no workspace folder is open.
const GlobalKey = "linkbox.links"

// Folder identifies a workspace folder by URI. Local folders use the file scheme.
type Folder struct {
	URI string `json:"uri"`
}

var reWindowsDrive = regexp.MustCompile(`^/[A-Za-z]:`)

// FolderFromPath builds a file-scheme folder for a local directory.
func FolderFromPath(p string) (*Folder, error) {
	abs, err := filepath.Abs(strings.TrimSpace(p))
	if err != nil {
		return nil, err
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return &Folder{URI: u.String()}, nil
}

// ParseFolder accepts either a URI ("file:///x", "vscode-remote://host/x") or a local path.
func ParseFolder(s string) (*Folder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if u, err := url.Parse(s); err == nil && len(u.Scheme) > 1 && strings.Contains(s, ":/") {
		return &Folder{URI: u.String()}, nil
	}
	return FolderFromPath(s)
}

// Scheme returns the folder URI scheme ("" when unparseable).
func (f *Folder) Scheme() string {
	if f == nil {
		return ""
	}
	u, err := url.Parse(f.URI)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// FSPath returns the local filesystem path of a file-scheme folder.
func (f *Folder) FSPath() (string, bool) {
	return f.fsPath(runtime.GOOS)
}

func (f *Folder) fsPath(goos string) (string, bool) {
	if f == nil {
		return "", false
	}
	u, err := url.Parse(f.URI)
	if err != nil || !strings.EqualFold(u.Scheme, "file") {
		return "", false
	}
	p := u.Path
	if goos == "windows" && reWindowsDrive.MatchString(p) {
		p = p[1:]
	}
	if u.Host != "" && u.Host != "localhost" {
		// UNC share.
		p = "//" + u.Host + p
	}
	return p, true
}

// ResolveStorageKey maps a folder to the key its link list lives under.
func ResolveStorageKey(folder *Folder) string {
	return resolveStorageKey(runtime.GOOS, folder)
}

func resolveStorageKey(goos string, folder *Folder) string {
	if folder == nil || strings.TrimSpace(folder.URI) == "" {
		return GlobalKey
	}
	if p, ok := folder.fsPath(goos); ok {
		normalized := filepath.Clean(p)
		if caseInsensitiveFS(goos) {
			normalized = strings.ToLower(normalized)
		}
		return GlobalKey + ":file:" + normalized
	}
	return GlobalKey + ":" + folder.URI
}

// legacyStorageKey is the pre-normalization key format: the raw folder URI.
func legacyStorageKey(folder *Folder) (string, bool) {
	if folder == nil || strings.TrimSpace(folder.URI) == "" {
		return "", false
	}
	return GlobalKey + ":" + folder.URI, true
}

func caseInsensitiveFS(goos string) bool {
	return goos == "windows"
}
