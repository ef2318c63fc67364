package entry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/envmanager/pkg/entry"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	builtIn := entry.New("Service", entry.MustPair("acc", accURL), entry.MustPair("prod", prodURL))
	custom := entry.New("Service",
		entry.MustPair("acc", accURL),
		entry.MustPair("acc", "http://custom-acc.api.domain.com"),
		entry.MustPair("local", "http://localhost:8080"),
	)

	merged := entry.Merge(builtIn, custom)

	assert.Equal(t, []string{"acc", "prod", "acc", "local"}, merged.EnvironmentNames())
	u, ok := merged.BaseURL("acc")
	require.True(t, ok)
	assert.Equal(t, accURL, u.String(), "built-in environment wins the lookup")

	assert.Equal(t, []string{"acc", "prod"}, builtIn.EnvironmentNames())
	assert.Equal(t, 3, custom.Len())
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	primary := []entry.Entry{
		entry.New("B", entry.MustPair("acc", accURL)),
		entry.New("A", entry.MustPair("acc", accURL)),
	}
	secondary := []entry.Entry{
		entry.New("C", entry.MustPair("acc", accURL)),
		entry.New("A", entry.MustPair("local", "http://localhost")),
	}

	merged := entry.MergeAll(primary, secondary)
	require.Len(t, merged, 3)

	assert.Equal(t, "B", merged[0].Name())
	assert.Equal(t, "A", merged[1].Name())
	assert.Equal(t, []string{"acc", "local"}, merged[1].EnvironmentNames())
	assert.Equal(t, "C", merged[2].Name())

	assert.Equal(t, 1, primary[1].Len())
	assert.Empty(t, entry.MergeAll(nil, nil))
}
