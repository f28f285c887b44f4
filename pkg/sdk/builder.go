package sdk

import (
	"context"

	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/response"
)

// InstallOptions are the parameters of an install command.
type InstallOptions struct {
	// Recursive also installs subpackages.
	Recursive bool
	// Autosave is the node count between saves; raised to MinAutosave.
	Autosave int
	// ACHandling overrides the package's access control handling when set.
	ACHandling api.ACHandling
}

// InstallBuilder provides a fluent API for install options.
//
//	resp, err := client.InstallWith(ctx, id,
//		sdk.NewInstall().
//			Recursive().
//			WithAutosave(4096).
//			WithACHandling(api.ACHandlingMergePreserve),
//		listener)
type InstallBuilder struct {
	opts InstallOptions
}

// NewInstall starts from a non-recursive install with the minimum autosave.
func NewInstall() *InstallBuilder {
	return &InstallBuilder{opts: InstallOptions{Autosave: MinAutosave}}
}

// Recursive installs subpackages too.
func (b *InstallBuilder) Recursive() *InstallBuilder {
	b.opts.Recursive = true
	return b
}

// WithAutosave sets the autosave threshold.
func (b *InstallBuilder) WithAutosave(n int) *InstallBuilder {
	b.opts.Autosave = n
	return b
}

// WithACHandling overrides access control handling.
func (b *InstallBuilder) WithACHandling(mode api.ACHandling) *InstallBuilder {
	b.opts.ACHandling = mode
	return b
}

// Options returns the underlying InstallOptions.
func (b *InstallBuilder) Options() InstallOptions {
	return b.opts
}

// InstallWith installs id using the builder's options.
func (c *Client) InstallWith(ctx context.Context, id *api.PackID, b *InstallBuilder, l response.Listener) (*api.DetailedResponse, error) {
	return c.Install(ctx, id, b.Options(), l)
}
