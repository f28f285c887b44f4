package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/filter"
	"github.com/granite-tools/packmgr/pkg/history"
	"github.com/granite-tools/packmgr/pkg/sdk"
	"github.com/granite-tools/packmgr/pkg/validation"
	"github.com/granite-tools/packmgr/pkg/vault"
)

const testPolicy = `
validationFilter: |
  /apps/site
  -/apps/site/install(/.*)?
forbiddenExtensions: [.jar]
`

func writePackage(t *testing.T, dir, name string, f filter.Filter, files map[string][]byte) string {
	t.Helper()
	id, err := api.NewPackID("acme", strings.TrimSuffix(name, ".zip"), "1.0")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, vault.WriteFile(path, vault.Contents{ID: *id, Filter: f, Files: files}))
	return path
}

func goodFilter() filter.Filter {
	return filter.New(filter.NewRoot("/apps/site", filter.Exclude("/apps/site/install(/.*)?")))
}

func setOutput(t *testing.T, format string) {
	t.Helper()
	flag := rootCmd.PersistentFlags().Lookup("output")
	prev := flag.Value.String()
	require.NoError(t, rootCmd.PersistentFlags().Set("output", format))
	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("output", prev) })
}

func TestInputFormat(t *testing.T) {
	assert.Equal(t, "zip", inputFormat("pkg.zip", ""))
	assert.Equal(t, "xml", inputFormat("filter.xml", ""))
	assert.Equal(t, "json", inputFormat("filter.json", ""))
	assert.Equal(t, "spec", inputFormat("-", ""))
	assert.Equal(t, "xml", inputFormat("filter.txt", "xml"))
}

func TestFilterConversion(t *testing.T) {
	dir := t.TempDir()
	pkg := writePackage(t, dir, "site.zip", goodFilter(), nil)

	fromZip, err := readFilter(pkg, "zip", nil)
	require.NoError(t, err)
	assert.True(t, goodFilter().Equal(fromZip))

	var xmlOut bytes.Buffer
	require.NoError(t, writeFilter(&xmlOut, fromZip, "xml"))
	xmlPath := filepath.Join(dir, "filter.xml")
	require.NoError(t, os.WriteFile(xmlPath, xmlOut.Bytes(), 0o644))
	fromXML, err := readFilter(xmlPath, "xml", nil)
	require.NoError(t, err)
	assert.True(t, fromZip.Equal(fromXML))

	var specOut bytes.Buffer
	require.NoError(t, writeFilter(&specOut, fromXML, "spec"))
	fromSpec, err := readFilter("-", "spec", &specOut)
	require.NoError(t, err)
	assert.True(t, fromZip.Equal(fromSpec))

	var jsonOut bytes.Buffer
	require.NoError(t, writeFilter(&jsonOut, fromSpec, "json"))
	fromJSON, err := readFilter("-", "json", &jsonOut)
	require.NoError(t, err)
	assert.True(t, fromZip.Equal(fromJSON))

	assert.ErrorIs(t, writeFilter(io.Discard, fromZip, "toml"), ErrInvalidFilter)
}

func TestResolvePackage(t *testing.T) {
	pkg := writePackage(t, t.TempDir(), "site.zip", goodFilter(), nil)

	id, file, err := resolvePackage(pkg)
	require.NoError(t, err)
	assert.Equal(t, pkg, file)
	assert.Equal(t, "acme:site:1.0", id.String())

	id, file, err = resolvePackage("acme:other:2.0")
	require.NoError(t, err)
	assert.Empty(t, file)
	assert.Equal(t, "/etc/packages/acme/other-2.0", id.InstallationPath)

	_, _, err = resolvePackage("no-such-file.zip")
	assert.ErrorIs(t, err, ErrResolvePackage)
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	opts, err := validation.ParsePolicy([]byte(testPolicy))
	require.NoError(t, err)
	v := validation.NewValidator(opts, nil)

	files := []string{
		writePackage(t, dir, "good.zip", goodFilter(), map[string][]byte{"apps/site/a.txt": []byte("a")}),
		writePackage(t, dir, "jar.zip", goodFilter(), map[string][]byte{"apps/site/lib.jar": []byte("x")}),
		writePackage(t, dir, "bare.zip", filter.New(filter.NewRoot("/apps/site")), nil),
		filepath.Join(dir, "missing.zip"),
	}

	results := validateFiles(v, files, 2)
	require.Len(t, results, 4)
	assert.Equal(t, validation.ReasonSuccess, results[0].Reason)
	assert.Equal(t, validation.ReasonForbiddenExtension, results[1].Reason)
	assert.Equal(t, "jcr_root/apps/site/lib.jar", results[1].Detail)
	assert.Equal(t, validation.ReasonRootMissingRules, results[2].Reason)
	assert.Equal(t, "/apps/site", results[2].Detail)
	assert.Equal(t, validation.ReasonFailedToID, results[3].Reason)
	assert.NotEmpty(t, results[3].Detail)
}

func TestRender(t *testing.T) {
	value := map[string]int{"total": 2}

	setOutput(t, "json")
	var buf bytes.Buffer
	require.NoError(t, render(&buf, value, nil))
	assert.JSONEq(t, `{"total":2}`, buf.String())

	setOutput(t, "yaml")
	buf.Reset()
	require.NoError(t, render(&buf, value, nil))
	assert.Equal(t, "total: 2\n", buf.String())

	setOutput(t, "xml")
	assert.ErrorIs(t, render(&buf, value, nil), ErrInvalidOutput)
}

// packageManager is a minimal server for end-to-end command runs.
type packageManager struct {
	mu       sync.Mutex
	commands []string
}

func (pm *packageManager) handler(t *testing.T) http.Handler {
	console, err := os.ReadFile(filepath.Join("..", "..", "pkg", "response", "testdata", "install_success.html"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc(sdk.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(sdk.JSONServicePath+"/", func(w http.ResponseWriter, r *http.Request) {
		pm.record(r.FormValue("cmd"))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "msg": "Package uploaded"})
	})
	mux.HandleFunc(sdk.HTMLServicePath+"/", func(w http.ResponseWriter, r *http.Request) {
		pm.record(r.FormValue("cmd"))
		_, _ = w.Write(console)
	})
	return mux
}

func (pm *packageManager) record(cmd string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.commands = append(pm.commands, cmd)
}

func (pm *packageManager) seen() []string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return append([]string(nil), pm.commands...)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInstallCommand(t *testing.T) {
	pm := &packageManager{}
	srv := httptest.NewServer(pm.handler(t))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	policyPath := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policyPath, []byte(testPolicy), 0o644))
	pkg := writePackage(t, dir, "site.zip", goodFilter(), map[string][]byte{"apps/site/a.txt": []byte("a")})

	out, err := runCLI(t, "install", "--url", srv.URL, "--password", "secret", "--history", dbPath,
		"--policy", policyPath, "--force", "-o", "json", pkg)
	require.NoError(t, err)
	assert.Equal(t, []string{"upload", "install"}, pm.seen())

	var resp api.DetailedResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(101), resp.Duration)

	store, err := history.Open(context.Background(), dbPath, nil)
	require.NoError(t, err)
	defer store.Close()
	receipts, err := store.List(context.Background(), history.Query{Package: "acme:site:1.0"})
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "install", receipts[0].Command)
	assert.Equal(t, "upload", receipts[1].Command)
}

func TestInstallCommandRejectsInvalidPackage(t *testing.T) {
	pm := &packageManager{}
	srv := httptest.NewServer(pm.handler(t))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policyPath, []byte(testPolicy), 0o644))
	pkg := writePackage(t, dir, "jar.zip", goodFilter(), map[string][]byte{"apps/site/lib.jar": []byte("x")})

	_, err := runCLI(t, "install", "--url", srv.URL, "--password", "secret", "--no-history",
		"--policy", policyPath, pkg)

	var exitErr *exitCodeError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitInvalid, exitErr.ExitCode())
	assert.Empty(t, pm.seen(), "a rejected package is not uploaded")
}
