package validation

import "github.com/granite-tools/packmgr/pkg/filter"

// CheckFilter checks each root of candidate against the policy filter in
// opts. A root must be covered by a policy root, unless non-covered roots
// are allowed, and its rules must end with the required rules of the most
// specific covering root, in order.
func CheckFilter(opts Options, candidate filter.Filter) Result {
	if opts.ValidationFilter == nil {
		return Success()
	}
	policy := *opts.ValidationFilter

	for _, root := range candidate.Roots {
		covering, ok := policy.CoveringRoot(root.Path)
		if !ok {
			if opts.AllowNonCoveredRoots {
				continue
			}
			return rootNotAllowed(root)
		}
		if !endsWith(opts.comparedRules(root.Rules), opts.comparedRules(covering.Rules)) {
			return rootMissingRules(root, covering)
		}
	}
	return Success()
}

// endsWith reports whether rules ends with required, comparing include flag
// and pattern text.
func endsWith(rules, required []filter.Rule) bool {
	if len(rules) < len(required) {
		return false
	}
	offset := len(rules) - len(required)
	for i := len(required) - 1; i >= 0; i-- {
		if rules[offset+i] != required[i] {
			return false
		}
	}
	return true
}
