package gitrepo

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FindRepoRoot walks up from start and returns the working tree root: the directory
// holding .git (a directory, or a worktree/submodule file pointing at the real gitdir).
// It does not invoke the git binary.
func FindRepoRoot(start string) (root string, ok bool, err error) {
	dir := filepath.Clean(strings.TrimSpace(start))
	if dir == "" || dir == "." {
		if dir, err = os.Getwd(); err != nil {
			return "", false, err
		}
	}

	for {
		candidate := filepath.Join(dir, ".git")
		st, statErr := os.Stat(candidate)
		switch {
		case statErr == nil && st.IsDir():
			return dir, true, nil
		case statErr == nil && !st.IsDir():
			target, err := readGitdirFile(candidate)
			if err != nil {
				return "", false, err
			}
			if target != "" {
				return dir, true, nil
			}
		default:
			// keep walking up
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func readGitdirFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" {
			continue
		}
		// Expected: "gitdir: /path/to/dir"
		if strings.HasPrefix(strings.ToLower(ln), "gitdir:") {
			p := strings.TrimSpace(strings.TrimPrefix(ln, ln[:len("gitdir:")]))
			if p == "" {
				return "", nil
			}
			if !filepath.IsAbs(p) {
				p = filepath.Join(filepath.Dir(path), p)
			}
			return filepath.Clean(p), nil
		}
		break
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// ErrNoWorkspace is returned by WorkspaceRoot when neither a repository nor a directory is usable.
var ErrNoWorkspace = errors.New("no workspace folder")

// WorkspaceRoot picks the folder a link list belongs to: the enclosing repository root,
// or start itself when it is not inside a repository.
func WorkspaceRoot(start string) (string, error) {
	root, ok, err := FindRepoRoot(start)
	if err != nil {
		return "", err
	}
	if ok {
		return root, nil
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		return "", ErrNoWorkspace
	}
	return abs, nil
}
