package adapter

import (
	"github.com/go-stagehand/stagehand"
)

// Resolve negotiates the final resource reservation for one phase from its
// statically declared hints and a runtime override, field by field: a runtime
// value wins over a static one, and a static one over the process default.
// Virtual memory, when neither side supplies it, follows the resolved memory
// reservation plus the fixed headroom. The result always has every
// reservation set.
func Resolve(static stagehand.Resource, dynamic stagehand.Resource) stagehand.Resource {
	memGB := stagehand.DefaultMemGB
	if static.MemGB != nil {
		memGB = *static.MemGB
	}
	if dynamic.MemGB != nil {
		memGB = *dynamic.MemGB
	}

	threads := stagehand.DefaultThreads
	if static.Threads != nil {
		threads = *static.Threads
	}
	if dynamic.Threads != nil {
		threads = *dynamic.Threads
	}

	vmemGB := memGB + stagehand.VMemHeadroomGB
	if static.VMemGB != nil {
		vmemGB = *static.VMemGB
	}
	if dynamic.VMemGB != nil {
		vmemGB = *dynamic.VMemGB
	}

	return stagehand.CreateResource().
		WithMemGB(memGB).
		WithVMemGB(vmemGB).
		WithThreads(threads)
}
