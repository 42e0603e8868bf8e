package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linkbox-cli/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	return runCLIWithInput(t, "", args)
}

func runCLIWithInput(t *testing.T, input string, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta map[string]any  `json:"meta"`
}

type linkJSON struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// testEnv isolates config and storage and returns the global flags every
// command in a test should use.
func testEnv(t *testing.T) (dir string, base []string) {
	t.Helper()
	t.Setenv("LINKBOX_CONFIG_DIR", t.TempDir())
	dir = t.TempDir()
	folder := t.TempDir()
	return dir, []string{"--dir", dir, "--folder", folder}
}

func mustRun(t *testing.T, args ...string) envelope {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: linkbox %v\nerr: %v\nstderr:\n%s", args, err, stderr)
	}
	var env envelope
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout: %v\nstdout:\n%s", err, stdout)
	}
	return env
}

func decodeLinks(t *testing.T, env envelope) []linkJSON {
	t.Helper()
	var out []linkJSON
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("data is not a link list: %v\n%s", err, env.Data)
	}
	return out
}

func labelsOf(links []linkJSON) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		parts = append(parts, l.Label)
	}
	return strings.Join(parts, ",")
}

func with(base []string, args ...string) []string {
	return append(append([]string{}, base...), args...)
}

func TestLinksList_FreshScopeShowsDefault(t *testing.T) {
	_, base := testEnv(t)
	env := mustRun(t, with(base, "links", "list")...)
	got := decodeLinks(t, env)
	if len(got) != 1 || got[0].Label != "Example" || got[0].URL != "https://example.com" {
		t.Fatalf("expected default list, got %+v", got)
	}
}

func TestLinks_AddEditMoveDelete(t *testing.T) {
	_, base := testEnv(t)

	env := mustRun(t, with(base, "links", "add", "Docs", "https://docs.example.com")...)
	if got := labelsOf(decodeLinks(t, env)); got != "Example,Docs" {
		t.Fatalf("after add: %s", got)
	}
	if env.Meta["changed"] != true {
		t.Fatalf("expected changed=true, got %v", env.Meta)
	}

	env = mustRun(t, with(base, "links", "add", "  Blog ", " https://blog.example.com ")...)
	links := decodeLinks(t, env)
	if links[2].Label != "Blog" || links[2].URL != "https://blog.example.com" {
		t.Fatalf("expected trimmed entry, got %+v", links[2])
	}

	env = mustRun(t, with(base, "links", "edit", "0", "Home", "https://home.example.com")...)
	if got := labelsOf(decodeLinks(t, env)); got != "Home,Docs,Blog" {
		t.Fatalf("after edit: %s", got)
	}

	env = mustRun(t, with(base, "links", "move", "2", "top")...)
	if got := labelsOf(decodeLinks(t, env)); got != "Blog,Home,Docs" {
		t.Fatalf("after move top: %s", got)
	}

	env = mustRun(t, with(base, "links", "move-to", "0", "3")...)
	if got := labelsOf(decodeLinks(t, env)); got != "Home,Docs,Blog" {
		t.Fatalf("after move-to end: %s", got)
	}

	env = mustRun(t, with(base, "links", "delete", "1", "--yes")...)
	if got := labelsOf(decodeLinks(t, env)); got != "Home,Blog" {
		t.Fatalf("after delete: %s", got)
	}

	env = mustRun(t, with(base, "links", "list")...)
	if got := labelsOf(decodeLinks(t, env)); got != "Home,Blog" {
		t.Fatalf("persisted list: %s", got)
	}
}

func TestLinksMove_NoMoveLeavesListUnchanged(t *testing.T) {
	_, base := testEnv(t)
	mustRun(t, with(base, "links", "add", "Docs", "https://docs.example.com")...)

	env := mustRun(t, with(base, "links", "move", "0", "up")...)
	if env.Meta["changed"] != false {
		t.Fatalf("expected changed=false, got %v", env.Meta)
	}
	if got := labelsOf(decodeLinks(t, env)); got != "Example,Docs" {
		t.Fatalf("list changed: %s", got)
	}
}

func TestLinksAdd_InvalidURLIsRejected(t *testing.T) {
	_, base := testEnv(t)

	_, stderr, err := runCLI(t, with(base, "links", "add", "Bad", "not a url"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(string(stderr), "URL is invalid.") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}

	_, stderr, err = runCLI(t, with(base, "links", "add", "  ", "https://x.example"))
	if err == nil || !strings.Contains(string(stderr), "Label and URL are required.") {
		t.Fatalf("expected required error, got %v / %s", err, stderr)
	}

	env := mustRun(t, with(base, "links", "list")...)
	if got := labelsOf(decodeLinks(t, env)); got != "Example" {
		t.Fatalf("list changed: %s", got)
	}
}

func TestLinks_OutOfRangeIndexIsNotFound(t *testing.T) {
	_, base := testEnv(t)

	_, stderr, err := runCLI(t, with(base, "links", "edit", "5", "X", "https://x.example"))
	var nf notFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected notFoundError, got %v", err)
	}
	if !strings.Contains(string(stderr), "link not found: 5") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}

	_, _, err = runCLI(t, with(base, "links", "move-to", "0", "7"))
	var ia invalidArgError
	if !errors.As(err, &ia) {
		t.Fatalf("expected invalidArgError, got %v", err)
	}

	_, _, err = runCLI(t, with(base, "links", "move", "0", "sideways"))
	if !errors.As(err, &ia) {
		t.Fatalf("expected invalidArgError for direction, got %v", err)
	}
}

func TestLinksDelete_PromptDeclineAndAccept(t *testing.T) {
	_, base := testEnv(t)
	mustRun(t, with(base, "links", "add", "Docs", "https://docs.example.com")...)

	stdout, stderr, err := runCLIWithInput(t, "n\n", with(base, "links", "delete", "1"))
	if err != nil {
		t.Fatalf("delete: %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stderr), `Delete "Docs"? [y/N]`) {
		t.Fatalf("expected prompt on stderr, got %q", stderr)
	}
	var env envelope
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Meta["message"] != "Delete canceled." {
		t.Fatalf("expected cancel message, got %v", env.Meta)
	}
	if got := labelsOf(decodeLinks(t, env)); got != "Example,Docs" {
		t.Fatalf("declined delete changed list: %s", got)
	}

	stdout, _, err = runCLIWithInput(t, "y\n", with(base, "links", "delete", "1"))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := labelsOf(decodeLinks(t, env)); got != "Example" {
		t.Fatalf("accepted delete: %s", got)
	}
}

func TestLinksDelete_NoInputDeclines(t *testing.T) {
	_, base := testEnv(t)
	mustRun(t, with(base, "links", "add", "Docs", "https://docs.example.com")...)

	env := mustRun(t, with(base, "links", "delete", "0")...)
	if env.Meta["message"] != "Delete canceled." {
		t.Fatalf("expected cancel, got %v", env.Meta)
	}
}

func TestLinks_ScopesAreIsolated(t *testing.T) {
	dir, base := testEnv(t)
	mustRun(t, with(base, "links", "add", "Docs", "https://docs.example.com")...)

	env := mustRun(t, "--dir", dir, "--global", "links", "list")
	if got := labelsOf(decodeLinks(t, env)); got != "Example" {
		t.Fatalf("global list leaked folder data: %s", got)
	}
	env = mustRun(t, "--dir", dir, "--folder", t.TempDir(), "links", "list")
	if got := labelsOf(decodeLinks(t, env)); got != "Example" {
		t.Fatalf("other folder leaked data: %s", got)
	}
}

func TestLinks_SeedsFromLegacyWorkspaceTier(t *testing.T) {
	dir, base := testEnv(t)
	folder := base[3]

	kv, err := store.Store{Dir: dir}.Open(context.Background(), store.BackendSQLite)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := kv.Set(context.Background(), store.TierWorkspace, store.GlobalKey, []byte(`[{"label":"Old","url":"https://old.example"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	env := mustRun(t, "--dir", dir, "--folder", folder, "links", "list")
	if got := labelsOf(decodeLinks(t, env)); got != "Old" {
		t.Fatalf("expected seeded list, got %s", got)
	}
}

func TestLinks_ExportImportRoundTrip(t *testing.T) {
	dir, base := testEnv(t)
	mustRun(t, with(base, "links", "add", "Docs", "https://docs.example.com")...)

	for _, ext := range []string{"json", "yaml", "toml"} {
		t.Run(ext, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "links."+ext)
			mustRun(t, with(base, "links", "export", "--out", out)...)
			if _, err := os.Stat(out); err != nil {
				t.Fatalf("export file: %v", err)
			}

			other := []string{"--dir", dir, "--folder", t.TempDir()}
			env := mustRun(t, with(other, "links", "import", out)...)
			if got := labelsOf(decodeLinks(t, env)); got != "Example,Docs" {
				t.Fatalf("imported: %s", got)
			}
			env = mustRun(t, with(other, "links", "list")...)
			if got := labelsOf(decodeLinks(t, env)); got != "Example,Docs" {
				t.Fatalf("persisted import: %s", got)
			}
		})
	}
}

func TestLinksImport_BareListAndRejection(t *testing.T) {
	_, base := testEnv(t)
	tmp := t.TempDir()

	good := filepath.Join(tmp, "good.yaml")
	if err := os.WriteFile(good, []byte("- label: A\n  url: https://a.example\n- label: B\n  url: https://b.example\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := mustRun(t, with(base, "links", "import", good)...)
	if got := labelsOf(decodeLinks(t, env)); got != "A,B" {
		t.Fatalf("imported: %s", got)
	}

	bad := filepath.Join(tmp, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"links":[{"label":"C","url":"https://c.example"},{"label":"D","url":"nope"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, stderr, err := runCLI(t, with(base, "links", "import", bad))
	if err == nil {
		t.Fatalf("expected rejection")
	}
	if !strings.Contains(string(stderr), "link 1") {
		t.Fatalf("expected failing entry index, got %s", stderr)
	}
	env = mustRun(t, with(base, "links", "list")...)
	if got := labelsOf(decodeLinks(t, env)); got != "A,B" {
		t.Fatalf("rejected import wrote data: %s", got)
	}
}

func TestKey_ReportsResolvedKey(t *testing.T) {
	_, base := testEnv(t)
	folder := base[3]

	env := mustRun(t, with(base, "key")...)
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	want := store.GlobalKey + ":file:" + filepath.Clean(folder)
	if data["key"] != want {
		t.Fatalf("key = %v, want %s", data["key"], want)
	}

	env = mustRun(t, "--global", "key")
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data["key"] != store.GlobalKey || data["global"] != true {
		t.Fatalf("global key: %v", data)
	}
}

func TestKeysAndDoctor(t *testing.T) {
	dir, base := testEnv(t)
	mustRun(t, with(base, "links", "add", "Docs", "https://docs.example.com")...)

	kv, err := store.Store{Dir: dir}.Open(context.Background(), store.BackendSQLite)
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(context.Background(), store.TierGlobal, "broken", []byte(`{"not":"a list"}`)); err != nil {
		t.Fatal(err)
	}
	_ = kv.Close()

	env := mustRun(t, with(base, "keys")...)
	var reports []store.KeyReport
	if err := json.Unmarshal(env.Data, &reports); err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 keys, got %+v", reports)
	}

	env = mustRun(t, with(base, "doctor")...)
	var issues []doctorIssue
	if err := json.Unmarshal(env.Data, &issues); err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Key != "broken" {
		t.Fatalf("unexpected issues: %+v", issues)
	}

	_, _, err = runCLI(t, with(base, "doctor", "--fail"))
	if !errors.Is(err, ErrDoctorIssuesFound) {
		t.Fatalf("expected ErrDoctorIssuesFound, got %v", err)
	}
}

func TestOpen_ValidatesAndDelegates(t *testing.T) {
	testEnv(t)
	var got []string
	prev := openURL
	openURL = func(_ context.Context, u string) error {
		got = append(got, u)
		return nil
	}
	t.Cleanup(func() { openURL = prev })

	mustRun(t, "open", "https://example.com")
	if len(got) != 1 || got[0] != "https://example.com" {
		t.Fatalf("unexpected calls: %v", got)
	}
}

func TestOpen_InvalidURLMessage(t *testing.T) {
	testEnv(t)
	_, stderr, err := runCLI(t, []string{"open", "not a url"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.HasPrefix(string(stderr), "invalid URL: not a url\n") {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}

func TestConfig_SetGetPath(t *testing.T) {
	testEnv(t)

	mustRun(t, "config", "set", "manager.addr", "127.0.0.1:9999")
	env := mustRun(t, "config", "get", "manager.addr")
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data["value"] != "127.0.0.1:9999" {
		t.Fatalf("value = %v", data["value"])
	}

	env = mustRun(t, "config", "path")
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(data["path"].(string), "config.yaml") {
		t.Fatalf("path = %v", data["path"])
	}

	if _, _, err := runCLI(t, []string{"config", "set", "nope", "x"}); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestOutputFormats(t *testing.T) {
	_, base := testEnv(t)
	for _, tc := range []struct {
		format string
		want   string
	}{
		{"edn", ":label"},
		{"yaml", "label: Example"},
		{"toml", "label = "},
	} {
		t.Run(tc.format, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, with(base, "--format", tc.format, "links", "list"))
			if err != nil {
				t.Fatalf("%v\n%s", err, stderr)
			}
			if !strings.Contains(string(stdout), tc.want) {
				t.Fatalf("expected %q in:\n%s", tc.want, stdout)
			}
		})
	}
}

func TestDocs(t *testing.T) {
	testEnv(t)
	env := mustRun(t, "docs")
	var topics []string
	if err := json.Unmarshal(env.Data, &topics); err != nil {
		t.Fatal(err)
	}
	if strings.Join(topics, ",") != "links,manager,storage" {
		t.Fatalf("topics = %v", topics)
	}

	_, _, err := runCLI(t, []string{"docs", "nope"})
	var nf notFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected notFoundError, got %v", err)
	}
}
