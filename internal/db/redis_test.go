package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "", "", 0)
	require.NoError(t, err)
	require.Nil(t, client)
}

func TestNewRedisClientPings(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	require.NotNil(t, client)
	require.NoError(t, client.Close())

	srv.Close()
	_, err = NewRedisClient(context.Background(), addr, "", 0)
	require.Error(t, err)
}
