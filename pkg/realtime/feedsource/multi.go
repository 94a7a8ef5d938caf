package feedsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/idletracker/pkg/ctdf"
)

// MultiSource merges the snapshots of several sources into one. Sources are
// fetched in parallel and their observations concatenated in source order.
type MultiSource struct {
	sources []Source
}

type fetchResult struct {
	index    int
	snapshot ctdf.Snapshot
	err      error
}

func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

func (m *MultiSource) Len() int {
	return len(m.sources)
}

// Fetch only fails when every source fails, returning the error of the first one
func (m *MultiSource) Fetch(ctx context.Context) (ctdf.Snapshot, error) {
	if len(m.sources) == 0 {
		return nil, &SourceUnavailableError{Source: "multi", Err: errors.New("no sources configured")}
	}

	p := pool.NewWithResults[fetchResult]()
	for index, source := range m.sources {
		p.Go(func() fetchResult {
			snapshot, err := source.Fetch(ctx)
			return fetchResult{index: index, snapshot: snapshot, err: err}
		})
	}

	ordered := make([]fetchResult, len(m.sources))
	for _, result := range p.Wait() {
		ordered[result.index] = result
	}

	var snapshot ctdf.Snapshot
	var firstErr error
	failed := 0

	for _, result := range ordered {
		if result.err != nil {
			failed++
			if firstErr == nil {
				firstErr = result.err
			}

			log.Warn().Err(result.err).Str("source", sourceName(m.sources[result.index], result.index)).Msg("Snapshot source failed")
			continue
		}

		snapshot = append(snapshot, result.snapshot...)
	}

	if failed == len(m.sources) {
		return nil, firstErr
	}

	if snapshot == nil {
		snapshot = ctdf.Snapshot{}
	}

	return snapshot, nil
}

func sourceName(source Source, index int) string {
	if named, ok := source.(interface{ Name() string }); ok {
		return named.Name()
	}

	return fmt.Sprintf("#%d", index)
}
