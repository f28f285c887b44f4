package vault

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/granite-tools/packmgr/internal/errx"
)

// PropertiesPath is where a package archive stores its identifying
// properties.
const PropertiesPath = "META-INF/vault/properties.xml"

// Well-known property keys.
const (
	PropGroup      = "group"
	PropName       = "name"
	PropVersion    = "version"
	PropPath       = "path"
	PropACHandling = "acHandling"
)

type xmlProperties struct {
	XMLName xml.Name   `xml:"properties"`
	Comment string     `xml:"comment,omitempty"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ParseProperties reads a Java XML properties document. A later entry
// overrides an earlier one with the same key.
func ParseProperties(r io.Reader) (map[string]string, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, err
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var doc xmlProperties
	if err := dec.Decode(&doc); err != nil {
		return nil, errx.Wrap(ErrParseProperties, err)
	}

	props := make(map[string]string, len(doc.Entries))
	for _, e := range doc.Entries {
		props[e.Key] = e.Value
	}
	return props, nil
}

// WriteProperties renders props as a Java XML properties document with keys
// in the given order.
func WriteProperties(w io.Writer, props map[string]string, keys []string) error {
	doc := xmlProperties{Comment: "FileVault Package Properties"}
	for _, k := range keys {
		if v, ok := props[k]; ok {
			doc.Entries = append(doc.Entries, xmlEntry{Key: k, Value: v})
		}
	}
	out, err := xml.MarshalIndent(doc, "", "")
	if err != nil {
		return errx.Wrap(ErrWriteArchive, err)
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n")
	sb.WriteString(`<!DOCTYPE properties SYSTEM "http://java.sun.com/dtd/properties.dtd">` + "\n")
	sb.Write(out)
	sb.WriteString("\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errx.Wrap(ErrWriteArchive, err)
	}
	return nil
}
