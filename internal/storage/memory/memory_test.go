package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

const accountsYAML = `
accounts:
  - userId: 1
    email: Admin@Example.com
    passwordHash: "$2a$10$abc"
    role: admin
    firstName: Ada
  - userId: 2
    email: staff@example.com
    passwordHash: "$2a$10$def"
    role: STAFF
`

func TestLoadAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(accountsYAML), 0o600))

	accounts, err := LoadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, model.RoleAdmin, accounts[0].Role)
	assert.Equal(t, "Ada", accounts[0].FirstName)
	assert.Equal(t, int64(2), accounts[1].UserID)

	_, err = LoadAccounts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseAccountsRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"syntax":       "accounts: [",
		"unknown role": "accounts:\n  - {userId: 1, email: a@x.io, passwordHash: h, role: ROOT}\n",
		"no hash":      "accounts:\n  - {userId: 1, email: a@x.io, role: ADMIN}\n",
		"duplicate":    "accounts:\n  - {userId: 1, email: a@x.io, passwordHash: h, role: ADMIN}\n  - {userId: 2, email: A@X.io, passwordHash: h, role: STAFF}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccounts([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestCredentialStore(t *testing.T) {
	ctx := context.Background()
	store := NewCredentialStore(model.FallbackAccount{UserID: 1, Email: "Admin@Example.com", PasswordHash: "h", Role: model.RoleAdmin})

	a, err := store.GetByEmail(ctx, " admin@EXAMPLE.com ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.UserID)

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	require.NoError(t, store.Upsert(ctx, model.FallbackAccount{UserID: 1, Email: "root@example.com", PasswordHash: "h2", Role: model.RoleAdmin}))
	_, err = store.GetByEmail(ctx, "admin@example.com")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound, "renamed account must not keep its old email")
	a, err = store.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "h2", a.PasswordHash)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	session := &model.Session{ID: "s1", UserID: 7, Role: model.RoleStaff, ExpiresAt: time.Now().Add(time.Hour)}

	require.NoError(t, store.Create(ctx, session))
	assert.ErrorIs(t, store.Create(ctx, session), domainErrors.ErrSessionExists)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.Role = model.RoleAdmin
	again, _ := store.Get(ctx, "s1")
	assert.Equal(t, model.RoleStaff, again.Role, "callers must receive copies")

	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestSessionStoreConcurrentCreateHasOneWinner(t *testing.T) {
	store := NewSessionStore()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Create(context.Background(), &model.Session{ID: "same"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	err := p.PublishStatusChanged(context.Background(), model.StatusChangedEvent{ID: "e1", OrderID: 5, From: "PENDING", To: "ACCEPTED", ChangedBy: 3})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "order status changed", entry.Message)
	assert.Equal(t, int64(5), entry.ContextMap()["order"])
	assert.Equal(t, "ACCEPTED", entry.ContextMap()["to"])
}
