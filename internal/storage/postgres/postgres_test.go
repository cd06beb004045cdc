package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"solana-art-lab/internal/storage"
)

func TestMapNotFound(t *testing.T) {
	assert.Equal(t, storage.ErrNotFound, mapNotFound("get", pgx.ErrNoRows))

	cause := errors.New("connection reset")
	err := mapNotFound("get", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "get: ")
}

func TestNewPool_InvalidDSN(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://user@host:notaport/db")
	assert.Error(t, err)
}
