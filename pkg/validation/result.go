package validation

import (
	"fmt"

	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/filter"
)

// Reason tags a validation outcome.
type Reason string

const (
	ReasonSuccess                   Reason = "SUCCESS"
	ReasonForbiddenExtension        Reason = "FORBIDDEN_EXTENSION"
	ReasonFailedToID                Reason = "FAILED_TO_ID"
	ReasonFailedToOpen              Reason = "FAILED_TO_OPEN"
	ReasonInvalidMetaInf            Reason = "INVALID_META_INF"
	ReasonRootNotAllowed            Reason = "ROOT_NOT_ALLOWED"
	ReasonRootMissingRules          Reason = "ROOT_MISSING_RULES"
	ReasonForbiddenACHandling       Reason = "FORBIDDEN_ACHANDLING"
	ReasonForbiddenFilterRootPrefix Reason = "FORBIDDEN_FILTER_ROOT_PREFIX"
	ReasonDeniedPathInclusion       Reason = "DENIED_PATH_INCLUSION"
)

// Result is the outcome of validating a package. Only the fields relevant
// to Reason are set.
type Result struct {
	Reason Reason
	// ForbiddenEntry is the archive entry, forbidden root prefix or denied
	// path that caused the failure.
	ForbiddenEntry      string
	ForbiddenACHandling api.ACHandling
	InvalidRoot         *filter.Root
	CoveringRoot        *filter.Root
	Cause               error
}

// Success is the single passing result. Results without payload compare
// equal with ==.
func Success() Result {
	return Result{Reason: ReasonSuccess}
}

func (r Result) OK() bool {
	return r.Reason == ReasonSuccess
}

func (r Result) String() string {
	switch r.Reason {
	case ReasonSuccess:
		return string(r.Reason)
	case ReasonForbiddenExtension:
		return fmt.Sprintf("%s: %s", r.Reason, r.ForbiddenEntry)
	case ReasonFailedToID, ReasonFailedToOpen, ReasonInvalidMetaInf:
		if r.Cause != nil {
			return fmt.Sprintf("%s: %v", r.Reason, r.Cause)
		}
		return string(r.Reason)
	case ReasonRootNotAllowed:
		return fmt.Sprintf("%s: %s", r.Reason, rootPath(r.InvalidRoot))
	case ReasonRootMissingRules:
		return fmt.Sprintf("%s: %s (covered by %s)", r.Reason, rootPath(r.InvalidRoot), rootPath(r.CoveringRoot))
	case ReasonForbiddenACHandling:
		return fmt.Sprintf("%s: %s", r.Reason, r.ForbiddenACHandling.Label())
	case ReasonForbiddenFilterRootPrefix:
		return fmt.Sprintf("%s: %s (prefix %s)", r.Reason, rootPath(r.InvalidRoot), r.ForbiddenEntry)
	case ReasonDeniedPathInclusion:
		return fmt.Sprintf("%s: %s (included by %s)", r.Reason, r.ForbiddenEntry, rootPath(r.InvalidRoot))
	}
	return string(r.Reason)
}

func rootPath(root *filter.Root) string {
	if root == nil {
		return "<none>"
	}
	return root.Path
}

func failedToID(cause error) Result {
	return Result{Reason: ReasonFailedToID, Cause: cause}
}

func failedToOpen(cause error) Result {
	return Result{Reason: ReasonFailedToOpen, Cause: cause}
}

func invalidMetaInf(cause error) Result {
	return Result{Reason: ReasonInvalidMetaInf, Cause: cause}
}

func forbiddenExtension(entry string) Result {
	return Result{Reason: ReasonForbiddenExtension, ForbiddenEntry: entry}
}

func forbiddenACHandling(mode api.ACHandling) Result {
	return Result{Reason: ReasonForbiddenACHandling, ForbiddenACHandling: mode}
}

func forbiddenRootPrefix(prefix string, root filter.Root) Result {
	return Result{Reason: ReasonForbiddenFilterRootPrefix, ForbiddenEntry: prefix, InvalidRoot: &root}
}

func deniedPathInclusion(path string, root filter.Root) Result {
	return Result{Reason: ReasonDeniedPathInclusion, ForbiddenEntry: path, InvalidRoot: &root}
}

func rootNotAllowed(root filter.Root) Result {
	return Result{Reason: ReasonRootNotAllowed, InvalidRoot: &root}
}

func rootMissingRules(root, covering filter.Root) Result {
	return Result{Reason: ReasonRootMissingRules, InvalidRoot: &root, CoveringRoot: &covering}
}
