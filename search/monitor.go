package search

import (
	"github.com/veldtlabs/wikivec/core"
	"github.com/veldtlabs/wikivec/index"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterRefine(original, effective string)
	AfterIndexSearch(hits []index.Hit)
	Finish(results []core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) AfterRefine(_, _ string)          {}
func (n *noopMonitor) AfterIndexSearch(_ []index.Hit)   {}
func (n *noopMonitor) Finish(_ []core.SearchResult)     {}
