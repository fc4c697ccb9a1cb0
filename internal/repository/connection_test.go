package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions(MongoOptions{
		URI:            "mongodb://localhost:27017",
		MaxPoolSize:    50,
		MinPoolSize:    5,
		ConnectTimeout: 3 * time.Second,
	})

	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(50), *opts.MaxPoolSize)
	require.NotNil(t, opts.MinPoolSize)
	assert.Equal(t, uint64(5), *opts.MinPoolSize)
	require.NotNil(t, opts.ConnectTimeout)
	assert.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	assert.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
	assert.Equal(t, appName, *opts.AppName)

	defaults := clientOptions(MongoOptions{URI: "mongodb://localhost:27017"})
	assert.Nil(t, defaults.MaxPoolSize)
	assert.Nil(t, defaults.ConnectTimeout)
}

func TestConnectMongoDB_Unreachable(t *testing.T) {
	_, err := ConnectMongoDB(context.Background(), MongoOptions{
		URI:            "mongodb://127.0.0.1:1/?directConnection=true",
		Database:       "testdb",
		ConnectTimeout: 200 * time.Millisecond,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping MongoDB")
}
