package sdk

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granite-tools/packmgr/pkg/api"
)

const sessionCookie = "login-token"

type recordedCommand struct {
	Path     string
	Cmd      string
	Form     map[string]string
	FileName string
	FileType string
	FileBody []byte
	Session  bool
}

// fakeService imitates the package manager endpoints used by Client.
type fakeService struct {
	t *testing.T

	mu           sync.Mutex
	commands     []recordedCommand
	queries      []map[string]string
	loginStatus  int
	legacyStatus int
	probeStatus  []int
	probes       int
	listBody     string
	consoleBody  []byte
	download     []byte
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	t.Helper()
	console, err := os.ReadFile(filepath.Join("..", "response", "testdata", "install_success.html"))
	require.NoError(t, err)

	f := &fakeService{
		t:            t,
		loginStatus:  http.StatusOK,
		legacyStatus: http.StatusOK,
		listBody:     `{"results":[],"total":0}`,
		consoleBody:  console,
		download:     []byte("zip content"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(LoginPath, f.login)
	mux.HandleFunc(LegacyLoginPath, f.legacyLogin)
	mux.HandleFunc(ListPath, f.list)
	mux.HandleFunc(DownloadPath, f.serveDownload)
	mux.HandleFunc(JSONServicePath, f.probe)
	mux.HandleFunc(JSONServicePath+"/", f.exec)
	mux.HandleFunc(HTMLServicePath+"/", f.console)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate ...func(*api.Config)) *Client {
	t.Helper()
	cfg := api.DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	cfg.PollInterval = time.Millisecond
	cfg.MaxPollDelay = 5 * time.Millisecond
	for _, m := range mutate {
		m(cfg)
	}

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := srv.Client()
	hc.Jar = jar

	c, err := NewClient(cfg, WithHTTPClient(hc))
	require.NoError(t, err)
	return c
}

func (f *fakeService) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	assert.NoError(f.t, r.ParseForm())
	f.record(r, map[string]string{
		loginParamUsername: r.PostForm.Get(loginParamUsername),
		loginParamPassword: r.PostForm.Get(loginParamPassword),
		loginParamValidate: r.PostForm.Get(loginParamValidate),
	})

	f.mu.Lock()
	status := f.loginStatus
	f.mu.Unlock()
	if status == http.StatusOK {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "t", Path: "/"})
	}
	w.WriteHeader(status)
}

func (f *fakeService) legacyLogin(w http.ResponseWriter, r *http.Request) {
	assert.NoError(f.t, r.ParseForm())
	f.record(r, map[string]string{
		legacyParamUserID:    r.PostForm.Get(legacyParamUserID),
		legacyParamWorkspace: r.PostForm.Get(legacyParamWorkspace),
	})

	f.mu.Lock()
	status := f.legacyStatus
	f.mu.Unlock()
	w.WriteHeader(status)
}

func (f *fakeService) probe(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status := http.StatusMethodNotAllowed
	if f.probes < len(f.probeStatus) {
		status = f.probeStatus[f.probes]
	}
	f.probes++
	f.mu.Unlock()
	w.WriteHeader(status)
}

func (f *fakeService) list(w http.ResponseWriter, r *http.Request) {
	q := map[string]string{}
	for k := range r.URL.Query() {
		q[k] = r.URL.Query().Get(k)
	}
	f.mu.Lock()
	f.queries = append(f.queries, q)
	body := f.listBody
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	_, _ = io.WriteString(w, body)
}

func (f *fakeService) serveDownload(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, map[string]string{keyPath: r.URL.Query().Get(keyPath)})
	f.mu.Unlock()
	w.Header().Set("Content-Type", mimeZip)
	_, _ = w.Write(f.download)
}

func (f *fakeService) exec(w http.ResponseWriter, r *http.Request) {
	rec := f.recordMultipart(r)
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"msg":     rec.Cmd + " ok",
		"path":    r.URL.Path[len(JSONServicePath):],
	})
}

func (f *fakeService) console(w http.ResponseWriter, r *http.Request) {
	f.recordMultipart(r)
	w.Header().Set("Content-Type", "text/html;charset=utf-8")
	_, _ = w.Write(f.consoleBody)
}

func (f *fakeService) recordMultipart(r *http.Request) recordedCommand {
	if !assert.NoError(f.t, r.ParseMultipartForm(1<<20)) {
		return recordedCommand{}
	}
	rec := recordedCommand{
		Path: r.URL.Path,
		Cmd:  r.FormValue(keyCmd),
		Form: map[string]string{},
	}
	for k, v := range r.MultipartForm.Value {
		rec.Form[k] = v[0]
	}
	if files := r.MultipartForm.File[keyPackage]; len(files) > 0 {
		fh := files[0]
		rec.FileName = fh.Filename
		rec.FileType = fh.Header.Get("Content-Type")
		if file, err := fh.Open(); assert.NoError(f.t, err) {
			rec.FileBody, _ = io.ReadAll(file)
			_ = file.Close()
		}
	}
	_, err := r.Cookie(sessionCookie)
	rec.Session = err == nil

	f.mu.Lock()
	f.commands = append(f.commands, rec)
	f.mu.Unlock()
	return rec
}

func (f *fakeService) record(r *http.Request, form map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, recordedCommand{Path: r.URL.Path, Form: form})
}

func (f *fakeService) lastCommand() recordedCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.commands)
	return f.commands[len(f.commands)-1]
}

func (f *fakeService) lastQuery() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.queries)
	return f.queries[len(f.queries)-1]
}

func (f *fakeService) set(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}
