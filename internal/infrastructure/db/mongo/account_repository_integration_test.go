//go:build integration

package mongo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/elobenin/rental-portal/internal/core/domain"
)

func startMongo(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	client, db, err := Connect(ctx, Config{URI: startMongo(t), Database: "portal_test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repo := NewAccountRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	now := time.Now().UTC().Truncate(time.Second)
	acc := &domain.Account{
		UserSession: domain.UserSession{
			ID: "acc-1", Email: "a@x.com", DisplayName: "Alice", Role: domain.RoleOwner,
		},
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(ctx, acc))

	dup := *acc
	dup.ID = "acc-2"
	assert.ErrorIs(t, repo.Create(ctx, &dup), domain.ErrAccountExists)

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, acc.UserSession, got.UserSession)
	assert.Equal(t, now, got.CreatedAt)

	got.Bio = "Landlord in Cotonou"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.FindByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Landlord in Cotonou", again.Bio)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	ghost := *acc
	ghost.ID = "ghost"
	ghost.Email = "ghost@x.com"
	assert.ErrorIs(t, repo.Update(ctx, &ghost), domain.ErrAccountNotFound)
}
