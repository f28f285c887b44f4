package vault

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/filter"
)

// Contents describes a package to write: its id, filter, optional access
// control handling and content entries keyed by path below jcr_root/.
type Contents struct {
	ID         api.PackID
	Filter     filter.Filter
	ACHandling api.ACHandling
	Files      map[string][]byte
}

// Write renders contents as a package archive.
func Write(w io.Writer, c Contents) error {
	zw := zip.NewWriter(w)

	props := map[string]string{
		PropGroup:   c.ID.Group,
		PropName:    c.ID.Name,
		PropVersion: c.ID.Version,
	}
	keys := []string{PropGroup, PropName, PropVersion}
	if c.ACHandling != api.ACHandlingUnset {
		props[PropACHandling] = c.ACHandling.PropertyValue()
		keys = append(keys, PropACHandling)
	}

	var buf bytes.Buffer
	if err := WriteProperties(&buf, props, keys); err != nil {
		return err
	}
	if err := writeEntry(zw, PropertiesPath, buf.Bytes()); err != nil {
		return err
	}

	filterXML, err := c.Filter.XML()
	if err != nil {
		return err
	}
	if err := writeEntry(zw, filter.FilterXMLPath, filterXML); err != nil {
		return err
	}

	names := make([]string, 0, len(c.Files))
	for name := range c.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeEntry(zw, ContentRoot+name, c.Files[name]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return errx.Wrap(ErrWriteArchive, err)
	}
	return nil
}

// WriteFile writes contents to a new archive at path.
func WriteFile(path string, c Contents) error {
	f, err := os.Create(path)
	if err != nil {
		return errx.Wrap(ErrWriteArchive, err)
	}
	if err := Write(f, c); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errx.Wrap(ErrWriteArchive, err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return errx.With(ErrWriteArchive, " %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return errx.With(ErrWriteArchive, " %s: %w", name, err)
	}
	return nil
}
