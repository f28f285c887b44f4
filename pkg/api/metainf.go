package api

import "github.com/granite-tools/packmgr/pkg/filter"

// MetaInf is the metadata a package archive carries under META-INF/vault.
type MetaInf struct {
	Filter     filter.Filter
	ACHandling ACHandling
	Properties map[string]string
}
