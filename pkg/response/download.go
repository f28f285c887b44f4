package response

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
)

// WriteDownload copies a download reply into target. The body is staged in
// a temporary file beside target and renamed into place once complete, so a
// failed transfer never leaves a truncated package behind.
func WriteDownload(statusCode int, statusText string, body io.Reader, target string) (*api.DownloadResponse, error) {
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		return nil, errx.With(ErrDownloadToDirectory, ": %s", target)
	}
	if statusCode != http.StatusOK {
		return nil, errx.With(api.ErrUnexpectedStatus, ": %d %s", statusCode, statusText)
	}

	dir := filepath.Dir(target)
	tmp := filepath.Join(dir, "."+filepath.Base(target)+"."+uuid.NewString()+".part")
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errx.Wrap(ErrWriteDownload, err)
	}

	n, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return nil, errx.Wrap(ErrWriteDownload, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return nil, errx.Wrap(ErrWriteDownload, err)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return &api.DownloadResponse{Length: n, Content: abs}, nil
}
