package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "timetable", nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var dest map[string]interface{}
	assert.ErrorIs(t, repo.Get(ctx, "conflicts:1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "conflicts:1", map[string]bool{"has_conflicts": false}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "conflicts:1"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryKeyNamespace(t *testing.T) {
	assert.Equal(t, "timetable:conflicts:7", NewCacheRepository(nil, "timetable", nil).Key("conflicts:7"))
	assert.Equal(t, "conflicts:7", NewCacheRepository(nil, "", nil).Key("conflicts:7"))
}
