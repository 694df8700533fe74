package repositories_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMessageRepository_CreateAndList(t *testing.T) {
	repo := repositories.NewJSONMessageRepository(filepath.Join(t.TempDir(), "messages.json"))

	first := &models.Message{UserID: "1", Subject: "Hello", Message: "First", CreatedAt: time.Now()}
	second := &models.Message{UserID: "1", Subject: "Again", Message: "Second", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	assert.NotEqual(t, first.ID, second.ID)

	messages, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "First", messages[0].Message)
	assert.Equal(t, "Second", messages[1].Message)
	assert.False(t, messages[0].Read)
}

func TestJSONMessageRepository_ConcurrentSubmissionsAreSerialized(t *testing.T) {
	repo := repositories.NewJSONMessageRepository(filepath.Join(t.TempDir(), "messages.json"))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Create(&models.Message{UserID: "1", Subject: "Hi", Message: "Concurrent"}))
		}()
	}
	wg.Wait()

	messages, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}
