package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/filter"
)

// policyDocument is the YAML form of Options:
//
//	validationFilter: |
//	  /apps/site
//	  -/apps/site/install(/.*)?
//	strictness: absolute-only
//	forbiddenExtensions: [.jar]
//	forbiddenACHandlingModes: [clear, overwrite]
//
// validationFilter may also be a list of {root, rules: [{include|exclude: pattern}]}.
type policyDocument struct {
	ValidationFilter            *policyFilter    `yaml:"validationFilter"`
	AllowNonCoveredRoots        bool             `yaml:"allowNonCoveredRoots"`
	Strictness                  Strictness       `yaml:"strictness"`
	ForbiddenExtensions         []string         `yaml:"forbiddenExtensions"`
	ForbiddenACHandlingModes    []api.ACHandling `yaml:"forbiddenACHandlingModes"`
	ForbiddenFilterRootPrefixes []string         `yaml:"forbiddenFilterRootPrefixes"`
	PathsDeniedForInclusion     []string         `yaml:"pathsDeniedForInclusion"`
}

type policyFilter struct {
	filter.Filter
}

type policyRoot struct {
	Root  string       `yaml:"root"`
	Rules []policyRule `yaml:"rules"`
}

type policyRule struct {
	Include string `yaml:"include"`
	Exclude string `yaml:"exclude"`
}

func (pf *policyFilter) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f, err := filter.ParseSpec(node.Value)
		if err != nil {
			return err
		}
		pf.Filter = f
		return nil
	}

	var roots []policyRoot
	if err := node.Decode(&roots); err != nil {
		return err
	}
	for _, pr := range roots {
		if pr.Root == "" {
			return errx.With(filter.ErrMissingRootPath, " at line %d", node.Line)
		}
		root := filter.NewRoot(pr.Root)
		for _, rule := range pr.Rules {
			var r filter.Rule
			switch {
			case rule.Include != "" && rule.Exclude == "":
				r = filter.Include(rule.Include)
			case rule.Exclude != "" && rule.Include == "":
				r = filter.Exclude(rule.Exclude)
			default:
				return errx.With(filter.ErrUnknownModifier, ": root %s needs exactly one of include or exclude per rule", pr.Root)
			}
			if err := filter.ValidatePattern(r.Pattern); err != nil {
				return errx.With(filter.ErrInvalidPattern, ": %s: %w", r.Pattern, err)
			}
			root.Rules = append(root.Rules, r)
		}
		pf.Roots = append(pf.Roots, root)
	}
	return nil
}

// ParsePolicy reads a YAML policy document. Unknown keys are rejected.
func ParsePolicy(data []byte) (Options, error) {
	var doc policyDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, errx.Wrap(ErrParsePolicy, err)
	}

	opts := Options{
		AllowNonCoveredRoots:        doc.AllowNonCoveredRoots,
		Strictness:                  doc.Strictness,
		ForbiddenExtensions:         doc.ForbiddenExtensions,
		ForbiddenACHandlingModes:    doc.ForbiddenACHandlingModes,
		ForbiddenFilterRootPrefixes: doc.ForbiddenFilterRootPrefixes,
		PathsDeniedForInclusion:     doc.PathsDeniedForInclusion,
	}
	if doc.ValidationFilter != nil {
		f := doc.ValidationFilter.Filter
		opts.ValidationFilter = &f
	}
	return opts, nil
}

// LoadPolicy reads a YAML policy document from path.
func LoadPolicy(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errx.Wrap(ErrReadPolicy, err)
	}
	opts, err := ParsePolicy(data)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}
