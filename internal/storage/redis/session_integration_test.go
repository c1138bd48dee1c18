//go:build integration

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/storefront-checkout/internal/domain/cart"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/session"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, c)

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, startRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewSessionRepository(client, time.Hour)
	require.NoError(t, repo.Ping(ctx))

	in := &session.Snapshot{
		ID:     "s1",
		UserID: "u1",
		Cart: cart.Cart{
			Items:          []cart.Item{{ProductID: "kurta", Quantity: 1, UnitPrice: decimal.NewFromInt(500)}},
			DonationAmount: decimal.RequireFromString("2.50"),
		},
		Checkout: checkout.State{Step: checkout.StepPayment},
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, checkout.StepPayment, out.Checkout.Step)
	assert.True(t, in.Cart.DonationAmount.Equal(out.Cart.DonationAmount))

	ttl, err := client.TTL(ctx, keyPrefix+"s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Load(ctx, "s1")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url")
	require.Error(t, err)
}
