package db

import (
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDatabase(t *testing.T, path string) *Database {
	d, err := NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestUsersPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiddle.db")
	d := openTestDatabase(t, path)

	tgUser := &tgbotapi.User{ID: 42, UserName: "alice", FirstName: "Ålice", LastName: "Ünicode"}
	user, err := d.AddUser(tgUser)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.TgID)
	assert.Same(t, user, d.GetUserByTgID(42))

	require.NoError(t, d.SetUserContract(user, "CCONTRACT"))
	require.NoError(t, d.SetUserPublicKey(user, "GPUBLIC"))
	require.NoError(t, d.Close())

	reopened := openTestDatabase(t, path)
	loaded := reopened.GetUserByTgID(42)
	require.NotNil(t, loaded)
	assert.Equal(t, "alice", loaded.TgUser)
	assert.Equal(t, "Ålice", loaded.TgFirst)
	assert.Equal(t, "Ünicode", loaded.TgLast)
	assert.Equal(t, "CCONTRACT", loaded.ContractID)
	assert.Equal(t, "GPUBLIC", loaded.PublicKey)
	assert.Len(t, reopened.GetUsers(), 1)
}

func TestGetUserByTgUserUpdatesNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fiddle.db")
	d := openTestDatabase(t, path)

	_, err := d.AddUser(&tgbotapi.User{ID: 7, UserName: "bob"})
	require.NoError(t, err)

	assert.Nil(t, d.GetUserByTgUser(&tgbotapi.User{ID: 8}))

	user := d.GetUserByTgUser(&tgbotapi.User{ID: 7, UserName: "robert", FirstName: "Rob"})
	require.NotNil(t, user)
	assert.Equal(t, "robert", user.TgUser)
	require.NoError(t, d.Close())

	reopened := openTestDatabase(t, path)
	assert.Equal(t, "robert", reopened.GetUserByTgID(7).TgUser)
	assert.Equal(t, "Rob", reopened.GetUserByTgID(7).TgFirst)
}

func TestDuplicateUser(t *testing.T) {
	d := openTestDatabase(t, filepath.Join(t.TempDir(), "fiddle.db"))

	_, err := d.AddUser(&tgbotapi.User{ID: 1})
	require.NoError(t, err)
	_, err = d.AddUser(&tgbotapi.User{ID: 1})
	assert.Error(t, err)
}

func TestBadPath(t *testing.T) {
	_, err := NewDatabase(filepath.Join(t.TempDir(), "missing", "dir", "fiddle.db"))
	assert.Error(t, err)
}
