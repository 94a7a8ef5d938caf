package idledetector

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/dataimporter/manager"
	"github.com/travigo/idletracker/pkg/realtime/feedsource"
	"github.com/travigo/idletracker/pkg/redis_client"
)

// NewDataSetsSource polls every selected dataset, or all registered ones when none are selected
func NewDataSetsSource(directory string, identifiers []string) (*feedsource.MultiSource, error) {
	registered, err := manager.GetRegisteredDataSets(directory)
	if err != nil {
		return nil, err
	}

	selected, err := manager.SelectDataSets(registered, identifiers)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return nil, errors.New("no datasets registered")
	}

	client := &http.Client{}

	sources := make([]feedsource.Source, 0, len(selected))
	for _, dataset := range selected {
		source, err := feedsource.NewDataSetSource(dataset, client)
		if err != nil {
			return nil, err
		}

		log.Info().Str("dataset", dataset.Identifier).Str("label", dataset.Label).Msg("Polling dataset")

		sources = append(sources, source)
	}

	return feedsource.NewMultiSource(sources...), nil
}

func NewLoopFactory(config Config, source feedsource.Source, publisher Publisher, options ...LoopOption) LoopFactory {
	return func() (*Loop, error) {
		return NewLoop(config, source, publisher, options...), nil
	}
}

// NewQueueController wires the detector to the registered datasets and the idle events queue.
// redis_client.Connect must have been called.
func NewQueueController(config Config, directory string, identifiers []string, extra ...Publisher) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	source, err := NewDataSetsSource(directory, identifiers)
	if err != nil {
		return nil, err
	}

	queuePublisher, err := NewQueuePublisher(redis_client.QueueConnection, IdleEventsQueue)
	if err != nil {
		return nil, err
	}

	var publisher Publisher = queuePublisher
	if len(extra) > 0 {
		publisher = append(MultiPublisher{queuePublisher}, extra...)
	}

	return NewController(NewLoopFactory(config, source, publisher)), nil
}
