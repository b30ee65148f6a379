package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders-management/internal/mapper"
	"orders-management/internal/store"
)

func TestCodecsMatchDescriptors(t *testing.T) {
	_, err := mapper.New(ClientSchema, ClientCodec, store.SQLite)
	require.NoError(t, err)
	_, err = mapper.New(ProductSchema, ProductCodec, store.SQLite)
	require.NoError(t, err)
	_, err = mapper.New(OrderSchema, OrderCodec, store.SQLite)
	require.NoError(t, err)
	_, err = mapper.New(BillSchema, BillCodec, store.SQLite)
	require.NoError(t, err)
}

func TestClientCodec_ColumnOrder(t *testing.T) {
	c := Client{ID: 7, Name: "Ana", Address: "Main St 1", Email: "ana@example.com", Age: 30, Phone: "0712345678"}
	assert.Equal(t, []any{int64(7), "Ana", "Main St 1", "ana@example.com", 30, "0712345678"}, ClientCodec.Values(c))
	assert.Equal(t, []string{"id", "name", "address", "email", "age", "phone"}, ClientSchema.Names())
}

func TestCodec_TargetsWriteBack(t *testing.T) {
	var b Bill
	targets := BillCodec.Targets(&b)
	require.Len(t, targets, 4)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	*targets[0].(*int64) = 3
	*targets[1].(*int64) = 9
	*targets[2].(*float64) = 30
	*targets[3].(*time.Time) = now
	assert.Equal(t, Bill{ID: 3, OrderID: 9, TotalAmount: 30, CreatedAt: now}, b)

	BillCodec.SetID(&b, 11)
	assert.Equal(t, int64(11), BillCodec.ID(b))
}
