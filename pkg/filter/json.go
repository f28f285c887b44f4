package filter

import (
	"encoding/json"

	"github.com/granite-tools/packmgr/internal/errx"
)

const (
	modifierInclude = "include"
	modifierExclude = "exclude"
)

type jsonRule struct {
	Modifier string `json:"modifier"`
	Pattern  string `json:"pattern"`
}

type jsonRoot struct {
	Root  string     `json:"root"`
	Rules []jsonRule `json:"rules"`
}

// MarshalJSON renders the filter as an array of {root, rules} objects, each
// rule carrying a "modifier" of include or exclude.
func (f Filter) MarshalJSON() ([]byte, error) {
	out := make([]jsonRoot, 0, len(f.Roots))
	for _, root := range f.Roots {
		jr := jsonRoot{Root: root.Path, Rules: make([]jsonRule, 0, len(root.Rules))}
		for _, rule := range root.Rules {
			modifier := modifierExclude
			if rule.Include {
				modifier = modifierInclude
			}
			jr.Rules = append(jr.Rules, jsonRule{Modifier: modifier, Pattern: rule.Pattern})
		}
		out = append(out, jr)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the format produced by MarshalJSON.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var in []jsonRoot
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	roots := make([]Root, 0, len(in))
	for _, jr := range in {
		if jr.Root == "" {
			return ErrMissingRootPath
		}
		root := Root{Path: jr.Root, Rules: make([]Rule, 0, len(jr.Rules))}
		for _, rule := range jr.Rules {
			switch rule.Modifier {
			case modifierInclude:
				root.Rules = append(root.Rules, Include(rule.Pattern))
			case modifierExclude:
				root.Rules = append(root.Rules, Exclude(rule.Pattern))
			default:
				return errx.With(ErrUnknownModifier, " %q in root %s", rule.Modifier, jr.Root)
			}
		}
		roots = append(roots, root)
	}
	f.Roots = roots
	return nil
}
