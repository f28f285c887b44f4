package history

import (
	"time"

	"github.com/granite-tools/packmgr/pkg/api"
)

// Receipt records the outcome of one remote package operation.
type Receipt struct {
	ID             string    `json:"id" yaml:"id"`
	Server         string    `json:"server" yaml:"server"`
	Command        string    `json:"command" yaml:"command"`
	Package        string    `json:"package" yaml:"package"`
	Success        bool      `json:"success" yaml:"success"`
	Message        string    `json:"message" yaml:"message"`
	Duration       int64     `json:"duration" yaml:"duration"`
	ProgressErrors []string  `json:"progressErrors,omitempty" yaml:"progressErrors,omitempty"`
	StackTrace     []string  `json:"stackTrace,omitempty" yaml:"stackTrace,omitempty"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
}

// FromDetailed builds a receipt from a console command reply.
func FromDetailed(server, command string, id *api.PackID, resp *api.DetailedResponse) Receipt {
	r := Receipt{
		Server:         server,
		Command:        command,
		Success:        resp.Success,
		Message:        resp.Message,
		Duration:       resp.Duration,
		ProgressErrors: resp.ProgressErrors,
		StackTrace:     resp.StackTrace,
	}
	if id != nil {
		r.Package = id.String()
	}
	return r
}

// FromSimple builds a receipt from a JSON command reply.
func FromSimple(server, command string, id *api.PackID, resp *api.SimpleResponse) Receipt {
	r := Receipt{
		Server:   server,
		Command:  command,
		Success:  resp.Success,
		Message:  resp.Message,
		Duration: -1,
	}
	if id != nil {
		r.Package = id.String()
	}
	return r
}

// details is the CBOR blob stored beside the scalar columns.
type details struct {
	ProgressErrors []string `cbor:"1,keyasint,omitempty"`
	StackTrace     []string `cbor:"2,keyasint,omitempty"`
}
