// Package deploy runs the validate, upload and install steps of a package
// deployment as one tracked pipeline.
package deploy

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/response"
	"github.com/granite-tools/packmgr/pkg/sdk"
	"github.com/granite-tools/packmgr/pkg/validation"
)

// Server is the part of the package manager client a deployment uses.
type Server interface {
	Upload(ctx context.Context, file string, force bool, id *api.PackID) (*api.SimpleResponse, error)
	Install(ctx context.Context, id *api.PackID, opts sdk.InstallOptions, l response.Listener) (*api.DetailedResponse, error)
}

// Validator checks a package file before it is sent.
type Validator interface {
	ValidateFile(path string) validation.Result
}

var (
	_ Server    = (*sdk.Client)(nil)
	_ Validator = (*validation.Validator)(nil)
)

// Request describes one deployment. With File set the package is validated
// (when a validator is configured) and uploaded before it is installed;
// otherwise ID must already be on the server.
type Request struct {
	File    string
	ID      *api.PackID
	Force   bool
	Install sdk.InstallOptions
}

// Outcome is what a deployment did. Phase is the last phase reached.
type Outcome struct {
	ID          *api.PackID           `json:"packId" yaml:"packId"`
	Phase       Phase                 `json:"phase" yaml:"phase"`
	Validation  *validation.Result    `json:"-" yaml:"-"`
	Upload      *api.SimpleResponse   `json:"upload,omitempty" yaml:"upload,omitempty"`
	Install     *api.DetailedResponse `json:"install,omitempty" yaml:"install,omitempty"`
	Transitions []Transition          `json:"transitions" yaml:"transitions"`
}

// Succeeded reports whether the package ended up installed.
func (o *Outcome) Succeeded() bool {
	return o.Phase == PhaseInstalled
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithValidator validates package files before upload.
func WithValidator(v Validator) Option {
	return func(p *Pipeline) { p.validator = v }
}

// WithListener receives install progress.
func WithListener(l response.Listener) Option {
	return func(p *Pipeline) { p.listener = l }
}

// WithLogger logs phase changes at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// OnTransition is called after every phase change.
func OnTransition(fn func(Transition)) Option {
	return func(p *Pipeline) { p.onTransition = fn }
}

// Pipeline deploys packages to one server.
type Pipeline struct {
	server       Server
	validator    Validator
	listener     response.Listener
	log          *zap.Logger
	onTransition func(Transition)
	now          func() time.Time
}

func NewPipeline(server Server, opts ...Option) *Pipeline {
	p := &Pipeline{server: server, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run deploys req. A package rejected by validation or a failed install is
// reported through the Outcome, not as an error; errors are transport
// failures and uploads the server refused.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.File == "" && req.ID == nil {
		return nil, ErrNoPackage
	}
	out := &Outcome{ID: req.ID, Phase: PhasePending}

	if req.File != "" {
		if p.validator != nil {
			p.move(out, PhaseValidating)
			r := p.validator.ValidateFile(req.File)
			out.Validation = &r
			if !r.OK() {
				p.move(out, PhaseRejected)
				return out, nil
			}
			p.move(out, PhaseValidated)
		}

		p.move(out, PhaseUploading)
		resp, err := p.server.Upload(ctx, req.File, req.Force, req.ID)
		out.Upload = resp
		if err != nil {
			p.move(out, PhaseUploadFailed)
			return out, err
		}
		if !resp.Success {
			p.move(out, PhaseUploadFailed)
			return out, errx.With(ErrUploadRejected, ": %s", resp.Message)
		}
		p.move(out, PhaseUploaded)
	}

	p.move(out, PhaseInstalling)
	resp, err := p.server.Install(ctx, req.ID, req.Install, p.listener)
	out.Install = resp
	if err != nil {
		p.move(out, PhaseInstallFailed)
		return out, err
	}
	if !resp.Success {
		p.move(out, PhaseInstallFailed)
		return out, nil
	}
	p.move(out, PhaseInstalled)
	return out, nil
}

// move panics on a transition outside the table; Run only takes listed ones.
func (p *Pipeline) move(out *Outcome, to Phase) {
	if err := validateTransition(out.Phase, to); err != nil {
		panic(err)
	}
	t := Transition{From: out.Phase, To: to, At: p.now()}
	out.Transitions = append(out.Transitions, t)
	out.Phase = to

	var pkg string
	if out.ID != nil {
		pkg = out.ID.String()
	}
	p.log.Debug("deployment phase",
		zap.String("package", pkg),
		zap.String("from", string(t.From)),
		zap.String("to", string(t.To)))
	if p.onTransition != nil {
		p.onTransition(t)
	}
}
