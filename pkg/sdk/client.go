// Package sdk provides a client for the package manager service of a
// content repository server.
//
//	client, err := sdk.NewClient(api.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.WaitForService(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := client.Login(ctx, "admin", "admin"); err != nil {
//	    log.Fatal(err)
//	}
//
//	id, err := client.Identify("site-content-1.0.zip")
//	_, err = client.Upload(ctx, "site-content-1.0.zip", true, id)
//	resp, err := client.InstallWith(ctx, id, sdk.NewInstall().Recursive(), nil)
//	fmt.Println(resp.Message)
package sdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/response"
	"github.com/granite-tools/packmgr/pkg/vault"
)

// Client talks to one package manager service. The login session is kept in
// a cookie jar. All methods are safe for concurrent use.
type Client struct {
	cfg  api.Config
	http *http.Client
	log  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. A client without a cookie
// jar cannot keep a login session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient validates cfg and creates a client. A nil cfg uses
// api.DefaultConfig.
func NewClient(cfg *api.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = api.DefaultConfig()
	}
	resolved := *cfg
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		cfg:  resolved,
		http: &http.Client{Jar: jar},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the resolved client configuration.
func (c *Client) Config() api.Config {
	return c.cfg
}

// BaseURL is the service root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

func (c *Client) htmlURL(id *api.PackID) string {
	return c.cfg.BaseURL + HTMLServicePath + EscapeInstallPath(id.InstallationPath) + ".zip"
}

func (c *Client) jsonURL(id *api.PackID) string {
	if id == nil {
		return c.cfg.BaseURL + JSONServicePath
	}
	return c.cfg.BaseURL + JSONServicePath + EscapeInstallPath(id.InstallationPath) + ".zip"
}

// LoginURL is where availability is probed.
func (c *Client) LoginURL() string {
	return c.jsonURL(nil)
}

// ConsoleUIURL links to the package manager UI, focused on id when given.
func (c *Client) ConsoleUIURL(id *api.PackID) string {
	base := c.cfg.BaseURL + ConsoleUIPath
	if id == nil {
		return base
	}
	fragment := strings.ReplaceAll(EscapeInstallPath(id.InstallationPath), "%3F", "?")
	return base + "#" + fragment + ".zip"
}

// do sends req with the configured request timeout and hands the response to
// handle before the body is closed.
func (c *Client) do(ctx context.Context, build func(context.Context) (*http.Request, error), handle func(*http.Response) error) error {
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	req, err := build(ctx)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errx.Wrap(ErrSendRequest, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode))
	return handle(resp)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (int, error) {
	var status int
	err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, errx.Wrap(ErrBuildRequest, err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, func(resp *http.Response) error {
		status = resp.StatusCode
		if status == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return nil
	})
	return status, err
}

// Login authenticates and keeps the session cookie. Servers that reject the
// security check endpoint with 405 are retried on the legacy login form.
func (c *Client) Login(ctx context.Context, username, password string) (bool, error) {
	status, err := c.postForm(ctx, LoginPath, url.Values{
		loginParamUsername: {username},
		loginParamPassword: {password},
		loginParamValidate: {"true"},
		loginParamCharset:  {loginValueCharset},
	})
	if err != nil {
		return false, errx.Wrap(ErrLogin, err)
	}
	if status == http.StatusMethodNotAllowed {
		c.log.Debug("falling back to legacy login")
		return c.loginLegacy(ctx, username, password)
	}
	return status == http.StatusOK, nil
}

func (c *Client) loginLegacy(ctx context.Context, username, password string) (bool, error) {
	status, err := c.postForm(ctx, LegacyLoginPath, url.Values{
		legacyParamUserID:    {username},
		legacyParamPassword:  {password},
		legacyParamWorkspace: {legacyValueWorkspace},
		legacyParamToken:     {""},
		loginParamCharset:    {loginValueCharset},
	})
	if err != nil {
		return false, errx.Wrap(ErrLogin, err)
	}
	return status == http.StatusOK, nil
}

// Identify reads the package id of a local archive, falling back to its
// file name.
func (c *Client) Identify(file string) (*api.PackID, error) {
	a, err := vault.Open(file)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Identify(false)
}

// ExistsOnServer reports whether the exact package is listed by the server.
func (c *Client) ExistsOnServer(ctx context.Context, id *api.PackID) (bool, error) {
	resp, err := c.ListPackage(ctx, id, false)
	if err != nil {
		return false, err
	}
	return len(resp.Results) > 0 && resp.Results[0].PackID.Equal(*id), nil
}

// List returns every package on the server.
func (c *Client) List(ctx context.Context) (*api.ListResponse, error) {
	return c.list(ctx, url.Values{})
}

// ListQuery returns packages matching a free text query.
func (c *Client) ListQuery(ctx context.Context, query string) (*api.ListResponse, error) {
	return c.list(ctx, url.Values{keyQuery: {query}})
}

// ListPackage lists one package, optionally with its other versions.
func (c *Client) ListPackage(ctx context.Context, id *api.PackID, includeVersions bool) (*api.ListResponse, error) {
	if id == nil {
		return nil, ErrPackIDMissing
	}
	return c.list(ctx, url.Values{
		keyPath:            {id.InstallationPath + ".zip"},
		keyIncludeVersions: {strconv.FormatBool(includeVersions)},
	})
}

func (c *Client) list(ctx context.Context, query url.Values) (*api.ListResponse, error) {
	var out *api.ListResponse
	err := c.do(ctx, c.get(ListPath, query), func(resp *http.Response) error {
		var err error
		out, err = response.ParseList(resp.StatusCode, statusText(resp), resp.Body, responseCharset(resp))
		return err
	})
	return out, err
}

func (c *Client) get(path string, query url.Values) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		u := c.cfg.BaseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, errx.Wrap(ErrBuildRequest, err)
		}
		return req, nil
	}
}

// Upload sends a package file. A nil id is read from the file.
func (c *Client) Upload(ctx context.Context, file string, force bool, id *api.PackID) (*api.SimpleResponse, error) {
	if id == nil {
		identified, err := c.Identify(file)
		if err != nil {
			return nil, err
		}
		id = identified
	}
	r := newCommand(id, CmdUpload).
		withFile(keyPackage, file, mimeZip).
		withBool(keyForce, force)
	return c.simple(ctx, r)
}

// Delete removes a package from the server.
func (c *Client) Delete(ctx context.Context, id *api.PackID) (*api.SimpleResponse, error) {
	if id == nil {
		return nil, ErrPackIDMissing
	}
	return c.simple(ctx, newCommand(id, CmdDelete))
}

// Replicate activates a package to publish instances.
func (c *Client) Replicate(ctx context.Context, id *api.PackID) (*api.SimpleResponse, error) {
	if id == nil {
		return nil, ErrPackIDMissing
	}
	return c.simple(ctx, newCommand(id, CmdReplicate))
}

func (c *Client) simple(ctx context.Context, r *commandRequest) (*api.SimpleResponse, error) {
	var out *api.SimpleResponse
	err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return r.newRequest(ctx, c.jsonURL(r.id))
	}, func(resp *http.Response) error {
		var err error
		out, err = response.ParseSimple(resp.StatusCode, statusText(resp), resp.Body, responseCharset(resp))
		return err
	})
	return out, err
}

// Contents lists the content of an installed package.
func (c *Client) Contents(ctx context.Context, id *api.PackID, l response.Listener) (*api.DetailedResponse, error) {
	return c.detailedCommand(ctx, id, CmdContents, l)
}

// Install installs an uploaded package.
func (c *Client) Install(ctx context.Context, id *api.PackID, opts InstallOptions, l response.Listener) (*api.DetailedResponse, error) {
	if id == nil {
		return nil, ErrPackIDMissing
	}
	r := newCommand(id, CmdInstall).
		withBool(keyRecursive, opts.Recursive).
		withParam(keyAutosave, strconv.Itoa(max(opts.Autosave, MinAutosave)))
	if opts.ACHandling != api.ACHandlingUnset {
		r.withParam(keyACHandling, opts.ACHandling.PropertyValue())
	}
	return c.detailed(ctx, r, l)
}

// DryRun simulates an install.
func (c *Client) DryRun(ctx context.Context, id *api.PackID, l response.Listener) (*api.DetailedResponse, error) {
	return c.detailedCommand(ctx, id, CmdDryRun, l)
}

// Build rebuilds a package from repository content.
func (c *Client) Build(ctx context.Context, id *api.PackID, l response.Listener) (*api.DetailedResponse, error) {
	return c.detailedCommand(ctx, id, CmdBuild, l)
}

// Rewrap rewrites package metadata without rebuilding content.
func (c *Client) Rewrap(ctx context.Context, id *api.PackID, l response.Listener) (*api.DetailedResponse, error) {
	return c.detailedCommand(ctx, id, CmdRewrap, l)
}

// Uninstall reverts an installed package from its snapshot.
func (c *Client) Uninstall(ctx context.Context, id *api.PackID, l response.Listener) (*api.DetailedResponse, error) {
	return c.detailedCommand(ctx, id, CmdUninstall, l)
}

func (c *Client) detailedCommand(ctx context.Context, id *api.PackID, cmd Command, l response.Listener) (*api.DetailedResponse, error) {
	if id == nil {
		return nil, ErrPackIDMissing
	}
	return c.detailed(ctx, newCommand(id, cmd), l)
}

func (c *Client) detailed(ctx context.Context, r *commandRequest, l response.Listener) (*api.DetailedResponse, error) {
	var out *api.DetailedResponse
	err := c.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return r.newRequest(ctx, c.htmlURL(r.id))
	}, func(resp *http.Response) error {
		var err error
		out, err = response.Decode(resp.StatusCode, statusText(resp), resp.Body, responseCharset(resp), l)
		return err
	})
	return out, err
}

// Download saves a package to target, which must not be a directory.
func (c *Client) Download(ctx context.Context, id *api.PackID, target string) (*api.DownloadResponse, error) {
	if id == nil {
		return nil, ErrPackIDMissing
	}
	var out *api.DownloadResponse
	query := url.Values{keyPath: {id.InstallationPath + ".zip"}}
	err := c.do(ctx, c.get(DownloadPath, query), func(resp *http.Response) error {
		var err error
		out, err = response.WriteDownload(resp.StatusCode, statusText(resp), resp.Body, target)
		return err
	})
	return out, err
}

// DownloadToDirectory saves a package below dir, mirroring its installation
// path: dir/etc/packages/<group>/<name>-<version>.zip.
func (c *Client) DownloadToDirectory(ctx context.Context, id *api.PackID, dir string) (*api.DownloadResponse, error) {
	if id == nil {
		return nil, ErrPackIDMissing
	}
	target := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(id.InstallationPath, "/"))+".zip")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, errx.Wrap(ErrCreateDir, err)
	}
	return c.Download(ctx, id, target)
}
