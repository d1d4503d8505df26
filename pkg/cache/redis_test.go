package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	Barcode string `json:"barcode"`
	Name    string `json:"name"`
}

func TestJSONLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMemoryStore()
	client := &Client{store: mock}
	key := client.Key("product", "barcode", "001")

	var got product
	found, err := client.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.SetJSON(ctx, key, product{Barcode: "001", Name: "Milk"}, time.Minute))
	assert.Equal(t, time.Minute, mock.ttls[key])

	found, err = client.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Milk", got.Name)

	require.NoError(t, client.Del(ctx, key))
	found, err = client.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_CorruptValue(t *testing.T) {
	mock := newMemoryStore()
	mock.data["cheftrack:product:barcode:bad"] = "{not json"
	client := &Client{store: mock}

	var got product
	found, err := client.GetJSON(context.Background(), "cheftrack:product:barcode:bad", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNilClientIsNoop(t *testing.T) {
	var client *Client
	ctx := context.Background()

	found, err := client.GetJSON(ctx, "k", &product{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, client.SetJSON(ctx, "k", product{}, time.Minute))
	assert.NoError(t, client.Del(ctx, "k"))
	assert.NoError(t, client.Close())
}

func TestKey(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "cheftrack:product:barcode:001", client.Key("product", "barcode", "001"))
	assert.Equal(t, "cheftrack:product", client.Key("product", "", " "))
}

func TestHealth(t *testing.T) {
	mock := newMemoryStore()
	client := &Client{store: mock}
	assert.Equal(t, "up", client.Health(context.Background())["status"])

	mock.pingErr = errors.New("connection refused")
	status := client.Health(context.Background())
	assert.Equal(t, "down", status["status"])
	assert.Equal(t, "connection refused", status["error"])
}

type memoryStore struct {
	data    map[string]string
	ttls    map[string]time.Duration
	pingErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *memoryStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.pingErr)
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryStore) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
