package feedsource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/idletracker/pkg/ctdf"
)

type staticSource struct {
	snapshot ctdf.Snapshot
	err      error
}

func (s staticSource) Fetch(ctx context.Context) (ctdf.Snapshot, error) {
	return s.snapshot, s.err
}

func TestMultiSourceConcatenatesInOrder(t *testing.T) {
	multi := NewMultiSource(
		staticSource{snapshot: ctdf.Snapshot{{VehicleID: "a1"}, {VehicleID: "a2"}}},
		staticSource{err: &SourceUnavailableError{Source: "b", Err: errors.New("timeout")}},
		staticSource{snapshot: ctdf.Snapshot{{VehicleID: "c1"}}},
	)

	snapshot, err := multi.Fetch(context.Background())
	require.NoError(t, err)

	ids := []string{}
	for _, observation := range snapshot {
		ids = append(ids, observation.VehicleID)
	}
	assert.Equal(t, []string{"a1", "a2", "c1"}, ids)
}

func TestMultiSourceAllFailed(t *testing.T) {
	first := &RateLimitedError{Source: "a"}

	multi := NewMultiSource(
		staticSource{err: first},
		staticSource{err: &MalformedPayloadError{Source: "b", Err: errors.New("bad")}},
	)

	_, err := multi.Fetch(context.Background())
	assert.Same(t, first, err)
}

func TestMultiSourceEmpty(t *testing.T) {
	_, err := NewMultiSource().Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	snapshot, err := NewMultiSource(staticSource{}).Fetch(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
}
