package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navbat/internal/org/models"
	"navbat/pkg/platform/sentinel"
)

func TestInMemoryStore_Create(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	id, err := store.Create(ctx, models.Organization{Name: "Central Clinic", CreatedBy: "op-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = store.Create(ctx, models.Organization{Name: "CENTRAL CLINIC"})
	require.ErrorIs(t, err, sentinel.ErrConflict, "names are unique regardless of case")

	other, err := store.Create(ctx, models.Organization{Name: "Central Clinic East"})
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestInMemoryStore_ConcurrentDuplicateCreatesOneWinner(t *testing.T) {
	store := NewInMemoryStore()
	var wins atomic.Int32

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(context.Background(), models.Organization{Name: "Acme", CreatedBy: fmt.Sprintf("op-%d", i)})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	_, err := store.Create(context.Background(), models.Organization{Name: "acme"})
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}
