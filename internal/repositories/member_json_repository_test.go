package repositories_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMemberRepository_MissingFileIsEmpty(t *testing.T) {
	repo := repositories.NewJSONMemberRepository(filepath.Join(t.TempDir(), "members.json"))

	members, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = repo.GetByEmail("nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestJSONMemberRepository_BlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	repo := repositories.NewJSONMemberRepository(path)

	members, err := repo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestJSONMemberRepository_CreateAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "members.json")
	repo := repositories.NewJSONMemberRepository(path)

	member := &models.Member{Name: "Ada", Email: "ada@example.com", Password: "$2a$10$x", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(member))
	assert.NotEmpty(t, member.ID)

	byEmail, err := repo.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, member.ID, byEmail.ID)

	byID, err := repo.GetByID(member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	// a fresh repository over the same file sees the record
	reopened := repositories.NewJSONMemberRepository(path)
	members, err := reopened.GetAll()
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestJSONMemberRepository_RejectsDuplicateEmail(t *testing.T) {
	repo := repositories.NewJSONMemberRepository(filepath.Join(t.TempDir(), "members.json"))

	require.NoError(t, repo.Create(&models.Member{Name: "Ada", Email: "ada@example.com"}))
	err := repo.Create(&models.Member{Name: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestJSONMemberRepository_UpdatePassword(t *testing.T) {
	repo := repositories.NewJSONMemberRepository(filepath.Join(t.TempDir(), "members.json"))
	member := &models.Member{Name: "Ada", Email: "ada@example.com", Password: "plain"}
	require.NoError(t, repo.Create(member))

	require.NoError(t, repo.UpdatePassword(member.ID, "$2a$10$hash"))
	stored, err := repo.GetByID(member.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", stored.Password)

	assert.ErrorIs(t, repo.UpdatePassword("missing", "x"), repositories.ErrNotFound)
}

func TestJSONMemberRepository_ConcurrentCreatesKeepEveryRecord(t *testing.T) {
	repo := repositories.NewJSONMemberRepository(filepath.Join(t.TempDir(), "members.json"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "user" + string(rune('a'+i)) + "@example.com"
			assert.NoError(t, repo.Create(&models.Member{Name: "User", Email: email}))
		}(i)
	}
	wg.Wait()

	members, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, members, 20)

	ids := make(map[string]bool)
	for _, m := range members {
		ids[m.ID] = true
	}
	assert.Len(t, ids, 20, "ids must be unique")
}

func TestJSONMemberRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	repo := repositories.NewJSONMemberRepository(path)

	_, err := repo.GetAll()
	assert.Error(t, err)
}
