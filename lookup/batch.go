package lookup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/helixion/conceptmap/core"
	"github.com/helixion/conceptmap/normalize"
)

// defaultBatchWorkers bounds the concurrency of LookupMany.
const defaultBatchWorkers = 8

// LookupMany resolves multiple terms concurrently and returns results in
// input order. One term's failure never aborts the rest: a failed item
// yields an unsuccessful result carrying the error as a warning.
func (s *Searcher) LookupMany(ctx context.Context, queries []string, opts ...QueryOption) (*core.BatchResult, error) {
	start := time.Now()
	batch := &core.BatchResult{
		Results: make([]*core.LookupResult, len(queries)),
		Total:   len(queries),
	}
	if len(queries) == 0 {
		return batch, nil
	}

	pool, err := ants.NewPool(defaultBatchWorkers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, query := range queries {
		i, query := i, query
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			result, err := s.Lookup(ctx, query, opts...)
			if err != nil {
				s.logger.Warn("batch lookup failed", "query", query, "error", err)
				result = &core.LookupResult{
					Query:           query,
					NormalizedQuery: normalize.Normalize(query),
					Warnings:        []string{fmt.Sprintf("lookup failed: %v", err)},
				}
			}
			batch.Results[i] = result
		})
		if submitErr != nil {
			wg.Done()
			batch.Results[i] = &core.LookupResult{
				Query:           query,
				NormalizedQuery: normalize.Normalize(query),
				Warnings:        []string{fmt.Sprintf("lookup failed: %v", submitErr)},
			}
		}
	}
	wg.Wait()

	for _, result := range batch.Results {
		if result.Success {
			batch.Successful++
		}
	}
	batch.TimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	return batch, nil
}
