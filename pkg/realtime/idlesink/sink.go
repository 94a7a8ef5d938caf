// Package idlesink persists the idle event batches published by the detector
package idlesink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/ctdf"
	"github.com/travigo/idletracker/pkg/database"
	"github.com/travigo/idletracker/pkg/elastic_client"
	"github.com/travigo/idletracker/pkg/redis_client"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxDurationExpiration = 6 * time.Hour

type bulkWriter interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
}

// Indexer receives every stored event, eg. for Elasticsearch
type Indexer func(event ctdf.IdleEvent)

// Sink keeps the longest known duration of every idle event. The same event
// arrives on every tick with a growing duration so writes are upserts.
type Sink struct {
	collection  bulkWriter
	maxDuration *cache.Cache[string]
	indexer     Indexer
	now         func() time.Time
}

func NewSink(collection bulkWriter, maxDuration *cache.Cache[string], indexer Indexer) *Sink {
	return &Sink{
		collection:  collection,
		maxDuration: maxDuration,
		indexer:     indexer,
		now:         time.Now,
	}
}

// NewDefaultSink uses the global database, redis and elasticsearch clients
func NewDefaultSink() *Sink {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(maxDurationExpiration))

	var indexer Indexer
	if elastic_client.Enabled() {
		indexer = IndexElasticEvent
	}

	return NewSink(database.GetCollection(database.IdleEventsCollection), cache.New[string](redisStore), indexer)
}

// DecodeBatch parses one published batch
func DecodeBatch(payload string) ([]ctdf.IdleEvent, error) {
	var events []ctdf.IdleEvent
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		return nil, err
	}

	for _, event := range events {
		if event.VehicleID == "" || event.Duration <= 0 {
			return nil, fmt.Errorf("invalid idle event for vehicle %q with duration %d", event.VehicleID, event.Duration)
		}
	}

	return events, nil
}

// Store writes the events that extend a known idle period or start a new one
func (s *Sink) Store(ctx context.Context, events []ctdf.IdleEvent) error {
	events = s.newerEvents(ctx, longestPerKey(events))
	if len(events) == 0 {
		return nil
	}

	now := s.now()

	writeModels := make([]mongo.WriteModel, 0, len(events))
	for _, event := range events {
		writeModels = append(writeModels, idleEventWriteModel(event, now))
	}

	if _, err := s.collection.BulkWrite(ctx, writeModels, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk write idle events: %w", err)
	}

	for _, event := range events {
		s.rememberDuration(ctx, event)

		if s.indexer != nil {
			s.indexer(event)
		}
	}

	log.Debug().Int("events", len(events)).Msg("Stored idle events")

	return nil
}

func (s *Sink) newerEvents(ctx context.Context, events []ctdf.IdleEvent) []ctdf.IdleEvent {
	if s.maxDuration == nil {
		return events
	}

	newer := make([]ctdf.IdleEvent, 0, len(events))
	for _, event := range events {
		cached, err := s.maxDuration.Get(ctx, cacheKey(event))
		if err == nil {
			if known, err := strconv.ParseInt(cached, 10, 64); err == nil && event.Duration <= known {
				continue
			}
		}

		newer = append(newer, event)
	}

	return newer
}

func (s *Sink) rememberDuration(ctx context.Context, event ctdf.IdleEvent) {
	if s.maxDuration == nil {
		return
	}

	if err := s.maxDuration.Set(ctx, cacheKey(event), strconv.FormatInt(event.Duration, 10)); err != nil {
		log.Warn().Err(err).Str("vehicle", event.VehicleID).Msg("Failed to cache idle event duration")
	}
}

func cacheKey(event ctdf.IdleEvent) string {
	return fmt.Sprintf("idletracker/maxduration/%s/%s", event.IATAID, event.Key().String())
}

// longestPerKey collapses repeated events of a batch, keeping the first position
func longestPerKey(events []ctdf.IdleEvent) []ctdf.IdleEvent {
	positions := map[string]int{}
	longest := make([]ctdf.IdleEvent, 0, len(events))

	for _, event := range events {
		key := cacheKey(event)

		if position, exists := positions[key]; exists {
			if event.Duration > longest[position].Duration {
				longest[position] = event
			}
			continue
		}

		positions[key] = len(longest)
		longest = append(longest, event)
	}

	return longest
}

func idleEventWriteModel(event ctdf.IdleEvent, now time.Time) mongo.WriteModel {
	filter := bson.M{
		"iataid":    event.IATAID,
		"vehicleid": event.VehicleID,
		"tripid":    event.TripID,
		"routeid":   event.RouteID,
		"latitude":  event.Latitude,
		"longitude": event.Longitude,
	}

	update := bson.M{
		"$max": bson.M{
			"duration": event.Duration,
			"datetime": event.Datetime,
		},
		"$set": bson.M{
			"modificationdatetime": now,
		},
		"$setOnInsert": bson.M{
			"creationdatetime": now,
		},
	}

	return mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true)
}

type idleElasticEvent struct {
	Timestamp time.Time

	IATAID    string
	VehicleID string
	TripID    *string
	RouteID   *string

	Location struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}

	Duration int64
}

// ElasticIndexName partitions events by ISO week of the confirming observation
func ElasticIndexName(event ctdf.IdleEvent) string {
	year, week := time.Unix(event.Datetime, 0).UTC().ISOWeek()

	return fmt.Sprintf("idle-events-%d-%02d", year, week)
}

func IndexElasticEvent(event ctdf.IdleEvent) {
	elasticEvent := idleElasticEvent{
		Timestamp: time.Unix(event.Datetime, 0).UTC(),
		IATAID:    event.IATAID,
		VehicleID: event.VehicleID,
		TripID:    event.TripID,
		RouteID:   event.RouteID,
		Duration:  event.Duration,
	}
	elasticEvent.Location.Lat = event.Latitude
	elasticEvent.Location.Lon = event.Longitude

	document, err := json.Marshal(elasticEvent)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode idle event for indexing")
		return
	}

	elastic_client.IndexRequest(ElasticIndexName(event), bytes.NewReader(document))
}
