package entry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/envmanager/pkg/entry"
)

func TestEntry_DelimitedText(t *testing.T) {
	t.Parallel()

	t.Run("single environment", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Service|acc|http://acc.api.domain.com", testEntry().DelimitedText())
	})

	t.Run("multiple environments", func(t *testing.T) {
		t.Parallel()
		e := testEntry().WithEnvironment(entry.MustPair("prod", prodURL))
		assert.Equal(t,
			"Service|acc|http://acc.api.domain.com\nService|prod|http://prod.api.domain.com",
			e.DelimitedText(),
		)
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("single row", func(t *testing.T) {
		t.Parallel()
		e, ok := entry.Parse("Service|acc|http://acc.api.domain.com")
		require.True(t, ok)
		assert.True(t, e.Equal(testEntry()))
	})

	t.Run("multiple rows", func(t *testing.T) {
		t.Parallel()
		e, ok := entry.Parse("Service|acc|http://acc.api.domain.com\nService|prod|http://prod.api.domain.com")
		require.True(t, ok)
		assert.Equal(t, []string{"acc", "prod"}, e.EnvironmentNames())
	})

	t.Run("differing service names", func(t *testing.T) {
		t.Parallel()
		_, ok := entry.Parse("Service|acc|http://acc.api.domain.com\nOtherService|prod|http://prod.api.domain.com")
		assert.False(t, ok)
	})

	t.Run("skips unusable rows", func(t *testing.T) {
		t.Parallel()
		e, ok := entry.Parse("Service|acc|http://acc.api.domain.com\nService|broken\nService|dev|not a url")
		require.True(t, ok)
		assert.Equal(t, []string{"acc"}, e.EnvironmentNames())
	})

	t.Run("no usable rows", func(t *testing.T) {
		t.Parallel()
		_, ok := entry.Parse("Service|broken")
		assert.False(t, ok)
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		_, ok := entry.Parse("")
		assert.False(t, ok)
	})
}

func TestEntry_TextRoundTrip(t *testing.T) {
	t.Parallel()

	entries := []entry.Entry{
		testEntry(),
		testEntry().WithEnvironment(entry.MustPair("prod", prodURL)),
		entry.New("With|Pipe", entry.MustPair("acc", "https://acc.example.com/base?x=1")),
	}

	for _, e := range entries {
		text, err := e.MarshalText()
		require.NoError(t, err)

		var decoded entry.Entry
		require.NoError(t, decoded.UnmarshalText(text))
		assert.True(t, decoded.Equal(e), "round trip of %q", text)
	}

	var zero entry.Entry
	_, err := zero.MarshalText()
	assert.ErrorIs(t, err, entry.ErrMalformedText)

	assert.ErrorIs(t, zero.UnmarshalText([]byte("a|b")), entry.ErrMalformedText)
}
