package api

import (
	"strings"

	"github.com/granite-tools/packmgr/internal/errx"
)

// ACHandling is the access control handling mode a package declares or an
// install request asks for.
type ACHandling int

const (
	// ACHandlingUnset is the zero value: the package declares no mode.
	ACHandlingUnset ACHandling = iota
	// ACHandlingIgnore leaves the target's access control unchanged.
	ACHandlingIgnore
	// ACHandlingOverwrite replaces the target's access control with the package's.
	ACHandlingOverwrite
	// ACHandlingMerge merges package entries over content, package first.
	ACHandlingMerge
	// ACHandlingMergePreserve merges package entries under content, content first.
	ACHandlingMergePreserve
	// ACHandlingClear removes all access control on the target.
	ACHandlingClear
)

var acHandlingNames = [...]struct{ label, value string }{
	ACHandlingUnset:         {"", ""},
	ACHandlingIgnore:        {"Ignore", "ignore"},
	ACHandlingOverwrite:     {"Overwrite", "overwrite"},
	ACHandlingMerge:         {"Merge", "merge"},
	ACHandlingMergePreserve: {"MergePreserve", "merge_preserve"},
	ACHandlingClear:         {"Clear", "clear"},
}

// ACHandlingModes lists every defined mode in declaration order.
func ACHandlingModes() []ACHandling {
	return []ACHandling{
		ACHandlingIgnore,
		ACHandlingOverwrite,
		ACHandlingMerge,
		ACHandlingMergePreserve,
		ACHandlingClear,
	}
}

// Label is the display label shown by the package manager UI.
func (a ACHandling) Label() string {
	if !a.valid() {
		return ""
	}
	return acHandlingNames[a].label
}

// PropertyValue is the wire token used for the acHandling property and
// install parameter.
func (a ACHandling) PropertyValue() string {
	if !a.valid() {
		return ""
	}
	return acHandlingNames[a].value
}

func (a ACHandling) String() string {
	if a == ACHandlingUnset || !a.valid() {
		return "unset"
	}
	return a.PropertyValue()
}

func (a ACHandling) valid() bool {
	return a >= ACHandlingUnset && int(a) < len(acHandlingNames)
}

// ParseACHandling accepts either the wire token or the display label, in any
// case.
func ParseACHandling(s string) (ACHandling, error) {
	trimmed := strings.TrimSpace(s)
	for _, mode := range ACHandlingModes() {
		if strings.EqualFold(trimmed, mode.PropertyValue()) || strings.EqualFold(trimmed, mode.Label()) {
			return mode, nil
		}
	}
	return ACHandlingUnset, errx.With(ErrInvalidACHandling, " %q", s)
}

func (a ACHandling) MarshalText() ([]byte, error) {
	return []byte(a.PropertyValue()), nil
}

func (a *ACHandling) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = ACHandlingUnset
		return nil
	}
	mode, err := ParseACHandling(string(text))
	if err != nil {
		return err
	}
	*a = mode
	return nil
}
