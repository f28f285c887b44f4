package filter

import (
	"encoding/xml"
	"io"

	"github.com/granite-tools/packmgr/internal/errx"
)

// FilterXMLPath is where a package archive stores its workspace filter.
const FilterXMLPath = "META-INF/vault/filter.xml"

type xmlWorkspaceFilter struct {
	XMLName xml.Name    `xml:"workspaceFilter"`
	Version string      `xml:"version,attr,omitempty"`
	Filters []xmlFilter `xml:"filter"`
}

type xmlFilter struct {
	Root  string    `xml:"root,attr"`
	Mode  string    `xml:"mode,attr,omitempty"`
	Rules []xmlRule `xml:",any"`
}

type xmlRule struct {
	XMLName xml.Name
	Pattern string `xml:"pattern,attr"`
}

// ParseXML reads a workspaceFilter document. Include and exclude elements
// keep their document order, and every pattern must compile.
func ParseXML(r io.Reader) (Filter, error) {
	var doc xmlWorkspaceFilter
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return Filter{}, errx.Wrap(ErrDecodeXML, err)
	}

	roots := make([]Root, 0, len(doc.Filters))
	for _, f := range doc.Filters {
		if f.Root == "" {
			return Filter{}, errx.Wrap(ErrDecodeXML, ErrMissingRootPath)
		}
		root := Root{Path: f.Root, Rules: make([]Rule, 0, len(f.Rules))}
		for _, rule := range f.Rules {
			var include bool
			switch rule.XMLName.Local {
			case modifierInclude:
				include = true
			case modifierExclude:
			default:
				return Filter{}, errx.With(ErrDecodeXML, ": %w %q in root %s", ErrUnknownModifier, rule.XMLName.Local, f.Root)
			}
			if err := ValidatePattern(rule.Pattern); err != nil {
				return Filter{}, errx.With(ErrDecodeXML, ": %w: %s: %w", ErrInvalidPattern, rule.Pattern, err)
			}
			root.Rules = append(root.Rules, Rule{Include: include, Pattern: rule.Pattern})
		}
		roots = append(roots, root)
	}
	return Filter{Roots: roots}, nil
}

// XML renders the filter as a workspaceFilter document.
func (f Filter) XML() ([]byte, error) {
	doc := xmlWorkspaceFilter{Version: "1.0"}
	for _, root := range f.Roots {
		xf := xmlFilter{Root: root.Path}
		for _, rule := range root.Rules {
			name := modifierExclude
			if rule.Include {
				name = modifierInclude
			}
			xf.Rules = append(xf.Rules, xmlRule{XMLName: xml.Name{Local: name}, Pattern: rule.Pattern})
		}
		doc.Filters = append(doc.Filters, xf)
	}
	out, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, errx.Wrap(ErrEncodeXML, err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
