package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesion-bot/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreates(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), user.ChatID)
	assert.Equal(t, entity.StateMainMenu, user.State)
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)

	age := 40
	user.SetPatient(entity.PatientRiskFactors{Age: &age, FamilyHistory: map[string]bool{"melanoma": true}})
	user.SetState(entity.StateAwaitingPhoto)

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StateMainMenu, again.State)
	assert.Nil(t, again.RiskFactors())

	require.NoError(t, repo.Save(ctx, user))
	age = 99
	user.Patient.FamilyHistory["melanoma"] = false

	stored, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StateAwaitingPhoto, stored.State)
	require.NotNil(t, stored.Patient.Age)
	assert.Equal(t, 40, *stored.Patient.Age)
	assert.True(t, stored.Patient.FamilyHistory["melanoma"])
}

func TestMemoryUserRepository_UpdateState(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpdateState(ctx, 5, entity.StateProcessing))

	_, err := repo.Get(ctx, 5, 50)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateState(ctx, 5, entity.StateProcessing))

	user, err := repo.Get(ctx, 5, 50)
	require.NoError(t, err)
	assert.Equal(t, entity.StateProcessing, user.State)
}

func TestMemoryUserRepository_ConcurrentGet(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Get(ctx, 7, 70)
		}()
	}
	wg.Wait()

	assert.Len(t, repo.users, 1)
}

func TestFileOverlayStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "heatmaps")
	store, err := NewFileOverlayStore(dir, "/heatmaps")
	require.NoError(t, err)

	rel, err := store.Save(context.Background(), "abc-123", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "/heatmaps/gradcam_abc-123.jpg", rel)

	data, err := os.ReadFile(store.Path("abc-123"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileOverlayStore_Rejects(t *testing.T) {
	store, err := NewFileOverlayStore(t.TempDir(), "/heatmaps")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../escape", []byte("x"))
	require.Error(t, err)

	_, err = store.Save(context.Background(), "ok", nil)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, "ok", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}
