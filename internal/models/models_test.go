package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusValid(t *testing.T) {
	t.Parallel()

	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusInProcess, OrderStatusCompleted, OrderStatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	s, err := ParseOrderStatus("in_process")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusInProcess, s)

	_, err = ParseOrderStatus("IN_PROCESS")
	assert.Error(t, err)
	_, err = ParseOrderStatus("")
	assert.Error(t, err)
}
