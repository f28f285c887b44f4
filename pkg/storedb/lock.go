package storedb

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"

	"github.com/granite-tools/packmgr/internal/errx"
)

func withFileLock(path string, fn func() error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return errx.Wrap(ErrOpenInitLock, err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return errx.Wrap(ErrAcquireInitLock, err)
	}
	fnErr := fn()
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return errors.Join(fnErr, errx.Wrap(ErrReleaseInitLock, err))
	}
	return fnErr
}
