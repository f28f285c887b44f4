package deploy

import (
	"time"

	"github.com/granite-tools/packmgr/internal/errx"
)

// Phase is a step of a deployment.
type Phase string

const (
	PhasePending       Phase = "pending"
	PhaseValidating    Phase = "validating"
	PhaseValidated     Phase = "validated"
	PhaseRejected      Phase = "rejected"
	PhaseUploading     Phase = "uploading"
	PhaseUploaded      Phase = "uploaded"
	PhaseUploadFailed  Phase = "upload_failed"
	PhaseInstalling    Phase = "installing"
	PhaseInstalled     Phase = "installed"
	PhaseInstallFailed Phase = "install_failed"
)

var allowedTransitions = map[Phase]map[Phase]bool{
	PhasePending: {
		PhaseValidating: true,
		PhaseUploading:  true,
		PhaseInstalling: true,
	},
	PhaseValidating: {
		PhaseValidated: true,
		PhaseRejected:  true,
	},
	PhaseValidated: {
		PhaseUploading: true,
	},
	PhaseUploading: {
		PhaseUploaded:     true,
		PhaseUploadFailed: true,
	},
	PhaseUploaded: {
		PhaseInstalling: true,
	},
	PhaseInstalling: {
		PhaseInstalled:     true,
		PhaseInstallFailed: true,
	},
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return len(allowedTransitions[p]) == 0
}

func validateTransition(from, to Phase) error {
	if to == "" {
		return errx.With(ErrInvalidPhase, " empty target phase from %q", from)
	}
	if !allowedTransitions[from][to] {
		return errx.With(ErrInvalidPhase, " %q -> %q", from, to)
	}
	return nil
}

// Transition is one recorded phase change.
type Transition struct {
	From Phase     `json:"from" yaml:"from"`
	To   Phase     `json:"to" yaml:"to"`
	At   time.Time `json:"at" yaml:"at"`
}
