package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const IdleEventsCollection = "idle_events"

func createIndexes() {
	createIdleEventsIndexes()
}

func createIdleEventsIndexes() {
	idleEventsCollection := GetCollection(IdleEventsCollection)
	identityIndexName := "IdleEventIdentity"

	_, err := idleEventsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Options: &options.IndexOptions{
				Name: &identityIndexName,
			},
			Keys: bson.D{
				{Key: "iataid", Value: 1},
				{Key: "vehicleid", Value: 1},
				{Key: "tripid", Value: 1},
				{Key: "routeid", Value: 1},
				{Key: "latitude", Value: 1},
				{Key: "longitude", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "datetime", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "iataid", Value: 1}, {Key: "duration", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "modificationdatetime", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(30 * 24 * 3600), // Expire after 30 days
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
