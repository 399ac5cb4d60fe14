package lookup

import "github.com/helixion/conceptmap/core"

// LookupMonitor provides hooks to observe the tiered search process.
// Implement this interface to track which tier resolved a query and what
// each tier produced along the way.
type LookupMonitor interface {
	Start(query, normalizedQuery string)
	AfterExactMatch(entries []*core.SearchEntry)
	AfterCandidateRetrieval(count int)
	AfterFuzzyScoring(topScore float64, count int)
	FuzzyEarlyExit(score float64)
	AfterSemanticSearch(count int)
	SemanticUnavailable(reason string)
	Finish(result *core.LookupResult)
}

// noopMonitor is a no-op implementation of LookupMonitor
type noopMonitor struct{}

var _ LookupMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                     {}
func (n *noopMonitor) AfterExactMatch(_ []*core.SearchEntry) {}
func (n *noopMonitor) AfterCandidateRetrieval(_ int)         {}
func (n *noopMonitor) AfterFuzzyScoring(_ float64, _ int)    {}
func (n *noopMonitor) FuzzyEarlyExit(_ float64)              {}
func (n *noopMonitor) AfterSemanticSearch(_ int)             {}
func (n *noopMonitor) SemanticUnavailable(_ string)          {}
func (n *noopMonitor) Finish(_ *core.LookupResult)           {}
