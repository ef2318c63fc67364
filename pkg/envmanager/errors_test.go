package envmanager_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/envmanager/pkg/envmanager"
)

func TestBuildError(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad scheme")
	tests := []struct {
		err      *envmanager.BuildError
		sentinel error
		message  string
	}{
		{
			err:      &envmanager.BuildError{Kind: envmanager.NoProductionEnvironmentSet, Service: "Quotes"},
			sentinel: envmanager.ErrNoProductionEnvironmentSet,
			message:  "no production environment set for service 'Quotes'",
		},
		{
			err:      &envmanager.BuildError{Kind: envmanager.EnvironmentCouldNotBeFound, Service: "Quotes", Environment: "prod"},
			sentinel: envmanager.ErrEnvironmentNotFound,
			message:  "environment 'prod' could not be found for service 'Quotes'",
		},
		{
			err:      &envmanager.BuildError{Kind: envmanager.UnableToConstructBaseURL, Service: "Quotes", URL: "ftp:/x", Err: cause},
			sentinel: envmanager.ErrInvalidBaseURL,
			message:  "unable to construct base url 'ftp:/x' for service 'Quotes': bad scheme",
		},
		{
			err:      &envmanager.BuildError{Kind: envmanager.CSVParsingError, Err: cause},
			sentinel: envmanager.ErrCSVParsing,
			message:  "tabular data parsing failed: bad scheme",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("startup: %w", tt.err)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.True(t, envmanager.IsBuildError(wrapped, tt.err.Kind))

			got, ok := envmanager.AsBuildError(wrapped)
			assert.True(t, ok)
			assert.Same(t, tt.err, got)

			if tt.err.Err != nil {
				assert.ErrorIs(t, wrapped, cause)
			}
		})
	}

	assert.False(t, envmanager.IsBuildError(cause, envmanager.CSVParsingError))
	_, ok := envmanager.AsBuildError(nil)
	assert.False(t, ok)
}
