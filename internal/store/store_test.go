package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	r, err := Open(context.Background(), Config{Driver: "memory"}, nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Nil(t, r.PG)
	assert.NotNil(t, r.Connections)
	assert.NotNil(t, r.Integrations)
	assert.NotNil(t, r.Principals)
	assert.NoError(t, r.Ping(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"}, nil)
	require.Error(t, err)
}

func TestOpenPostgresBadDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres", DSN: "::not a dsn::"}, nil)
	require.Error(t, err)
}
