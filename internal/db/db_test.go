package db

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedis(RedisOpts{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = NewRedis(RedisOpts{Addr: mr.Addr(), DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestOpenEmptyDSN(t *testing.T) {
	_, err := NewMySQL(SQLOpts{})
	assert.ErrorIs(t, err, ErrEmptyDSN)

	_, err = NewClickHouse(SQLOpts{})
	assert.ErrorIs(t, err, ErrEmptyDSN)
}
