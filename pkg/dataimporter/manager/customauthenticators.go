package manager

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/dataimporter/datasets"
	"github.com/travigo/idletracker/pkg/util"
)

type customAuthenticator func(req *http.Request, authentication datasets.SourceAuthentication, env map[string]string, now time.Time)

var customAuthenticators = map[string]customAuthenticator{
	"rotating-key": customAuthRotatingKey,
}

// AuthenticateRequest applies the dataset authentication to req. Values may reference
// environment variables, eg. `$TRAVIGO_API_KEY_NYC`, so secrets stay out of the YAML files.
func AuthenticateRequest(req *http.Request, dataset datasets.DataSet, env map[string]string, now time.Time) {
	authentication := dataset.SourceAuthentication

	if len(authentication.Query) > 0 {
		query := req.URL.Query()
		for key, value := range authentication.Query {
			query.Set(key, util.ExpandEnvironment(env, value))
		}
		req.URL.RawQuery = query.Encode()
	}

	for key, value := range authentication.Header {
		req.Header.Set(key, util.ExpandEnvironment(env, value))
	}

	if authentication.Basic.Username != "" && req.Header.Get("Authorization") == "" {
		req.SetBasicAuth(
			util.ExpandEnvironment(env, authentication.Basic.Username),
			util.ExpandEnvironment(env, authentication.Basic.Password),
		)
	}

	if authentication.Custom != "" {
		authenticator, ok := customAuthenticators[authentication.Custom]
		if !ok {
			log.Error().Str("dataset", dataset.Identifier).Str("custom", authentication.Custom).Msg("Unknown custom authenticator")
			return
		}

		authenticator(req, authentication, env, now)
	}
}

// Spreads requests over several API keys by picking one from the current second
func customAuthRotatingKey(req *http.Request, authentication datasets.SourceAuthentication, env map[string]string, now time.Time) {
	keys := authentication.RotatingKeys.Keys
	if len(keys) == 0 || authentication.RotatingKeys.Header == "" {
		return
	}

	index := now.Second() % len(keys)
	req.Header.Set(authentication.RotatingKeys.Header, util.ExpandEnvironment(env, keys[index]))

	log.Debug().Str("url", req.URL.Host).Int("key", index).Msg("Rotating API key selected")
}
