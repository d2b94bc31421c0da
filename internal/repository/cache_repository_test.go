package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
)

// A cache repository without a client must behave like an always-empty
// cache: reads miss, writes and invalidation succeed silently.
func TestCacheRepositoryNilClientDegrades(t *testing.T) {
	repo := NewCacheRepository(nil, zap.NewNop())
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "announcements:key", &dest)
	assert.True(t, appErrors.Is(err, appErrors.ErrCacheMiss))

	assert.NoError(t, repo.Set(ctx, "announcements:key", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "announcements:*"))
	assert.NoError(t, repo.Publish(ctx, "comm-center:events", map[string]string{"type": "x"}))
	assert.NoError(t, repo.Close())
}
