package feedsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/dataimporter/datasets"
	"github.com/travigo/idletracker/pkg/dataimporter/formats"
	"github.com/travigo/idletracker/pkg/dataimporter/formats/gtfs"
	"github.com/travigo/idletracker/pkg/dataimporter/manager"
	"github.com/travigo/idletracker/pkg/util"
)

const (
	userAgent     = "travigo-idletracker/1.0"
	defaultAccept = "application/x-protobuf, application/octet-stream;q=0.9, */*;q=0.8"
)

// HTTPSource polls a single dataset over HTTP
type HTTPSource struct {
	dataset datasets.DataSet
	format  formats.SnapshotFormat
	client  *http.Client

	env map[string]string
	now func() time.Time
}

func NewHTTPSource(dataset datasets.DataSet, format formats.SnapshotFormat, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPSource{
		dataset: dataset,
		format:  format,
		client:  client,
		env:     util.GetEnvironmentVariables(),
		now:     time.Now,
	}
}

// NewDataSetSource validates dataset and builds the source for its format
func NewDataSetSource(dataset datasets.DataSet, client *http.Client) (*HTTPSource, error) {
	if err := manager.ValidateDataset(dataset); err != nil {
		return nil, err
	}

	var format formats.SnapshotFormat
	switch dataset.Format {
	case datasets.DataSetFormatGTFSRealtime:
		realtime, err := gtfs.NewRealtime(dataset)
		if err != nil {
			return nil, err
		}
		format = realtime
	default:
		return nil, fmt.Errorf("dataset %s: unsupported format %s", dataset.Identifier, dataset.Format)
	}

	return NewHTTPSource(dataset, format, client), nil
}

func (s *HTTPSource) Name() string {
	return s.dataset.Identifier
}

func (s *HTTPSource) Fetch(ctx context.Context) (ctdf.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.dataset.Source, nil)
	if err != nil {
		return nil, &SourceUnavailableError{Source: s.Name(), Err: err}
	}

	accept := s.dataset.Accept
	if accept == "" {
		accept = defaultAccept
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Cache-Control", "no-cache")

	manager.AuthenticateRequest(req, s.dataset, s.env, s.now())

	startTime := time.Now()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitedError{Source: s.Name(), RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), s.now())}
	case resp.StatusCode != http.StatusOK:
		return nil, &SourceUnavailableError{Source: s.Name(), Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SourceUnavailableError{Source: s.Name(), Err: fmt.Errorf("read body: %w", err)}
	}

	snapshot, err := s.format.Decode(body)
	if err != nil {
		return nil, &MalformedPayloadError{Source: s.Name(), Err: err}
	}

	log.Debug().
		Str("dataset", s.Name()).
		Int("bytes", len(body)).
		Int("observations", len(snapshot)).
		Str("latency", time.Since(startTime).String()).
		Msg("Fetched snapshot")

	return snapshot, nil
}

// Retry-After is either a number of seconds or an HTTP date
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now)
	}

	return 0
}
