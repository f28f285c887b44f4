package sdk

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
)

// Service paths relative to the base URL.
const (
	ConsoleUIPath   = "/crx/packmgr/index.jsp"
	ListPath        = "/crx/packmgr/list.jsp"
	DownloadPath    = "/crx/packmgr/download.jsp"
	ServiceBasePath = "/crx/packmgr/service"
	HTMLServicePath = ServiceBasePath + "/console.html"
	JSONServicePath = ServiceBasePath + "/exec.json"
	LoginPath       = "/crx/j_security_check"
	LegacyLoginPath = "/crx/de/login.jsp"
)

// MinAutosave is the smallest autosave threshold sent with an install.
const MinAutosave = 1024

const mimeZip = "application/zip"

// Request parameter keys
const (
	keyCmd             = "cmd"
	keyForce           = "force"
	keyPackage         = "package"
	keyPath            = "path"
	keyRecursive       = "recursive"
	keyAutosave        = "autosave"
	keyACHandling      = "acHandling"
	keyIncludeVersions = "includeVersions"
	keyQuery           = "q"

	loginParamUsername = "j_username"
	loginParamPassword = "j_password"
	loginParamValidate = "j_validate"
	loginParamCharset  = "_charset_"
	loginValueCharset  = "utf-8"

	legacyParamUserID    = "UserId"
	legacyParamPassword  = "Password"
	legacyParamWorkspace = "Workspace"
	legacyValueWorkspace = "crx.default"
	legacyParamToken     = ".token"
)

// Command is a package manager service command.
type Command string

const (
	CmdContents  Command = "contents"
	CmdInstall   Command = "install"
	CmdUninstall Command = "uninstall"
	CmdUpload    Command = "upload"
	CmdBuild     Command = "build"
	CmdRewrap    Command = "rewrap"
	CmdDryRun    Command = "dryrun"
	CmdDelete    Command = "delete"
	CmdReplicate Command = "replicate"
)

// EscapeInstallPath percent-escapes each segment of an installation path.
func EscapeInstallPath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

type param struct {
	name  string
	value string
}

type fileParam struct {
	name     string
	path     string
	mimeType string
}

// commandRequest collects the parts of a service POST.
type commandRequest struct {
	id     *api.PackID
	params []param
	file   *fileParam
}

func newCommand(id *api.PackID, cmd Command) *commandRequest {
	r := &commandRequest{id: id}
	return r.withParam(keyCmd, string(cmd))
}

func (r *commandRequest) withParam(name, value string) *commandRequest {
	r.params = append(r.params, param{name: name, value: value})
	return r
}

func (r *commandRequest) withBool(name string, value bool) *commandRequest {
	return r.withParam(name, strconv.FormatBool(value))
}

func (r *commandRequest) withFile(name, path, mimeType string) *commandRequest {
	r.file = &fileParam{name: name, path: path, mimeType: mimeType}
	return r
}

// body streams the request as multipart/form-data. The file part, if any,
// is copied from disk while the request is sent.
func (r *commandRequest) body() (io.ReadCloser, string, error) {
	var fh *os.File
	if r.file != nil {
		f, err := os.Open(r.file.path)
		if err != nil {
			return nil, "", errx.Wrap(ErrOpenPackage, err)
		}
		fh = f
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := r.writeParts(mw, fh)
		if fh != nil {
			_ = fh.Close()
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType(), nil
}

func (r *commandRequest) writeParts(mw *multipart.Writer, fh *os.File) error {
	for _, p := range r.params {
		if err := mw.WriteField(p.name, p.value); err != nil {
			return err
		}
	}
	if fh == nil {
		return nil
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     r.file.name,
		"filename": filepath.Base(r.file.path),
	}))
	h.Set("Content-Type", r.file.mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, fh)
	return err
}

func (r *commandRequest) newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	body, contentType, err := r.body()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		_ = body.Close()
		return nil, errx.Wrap(ErrBuildRequest, err)
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

// responseCharset reads the charset parameter of the Content-Type header,
// defaulting to UTF-8.
func responseCharset(resp *http.Response) string {
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		if cs := params["charset"]; cs != "" {
			return cs
		}
	}
	return "UTF-8"
}

// statusText is the reason phrase of the response status line.
func statusText(resp *http.Response) string {
	return strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
}
