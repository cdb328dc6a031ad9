package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	t.Run("aligned ledger is kept", func(t *testing.T) {
		ledgerStore := &memLedger{}

		ledger, err := Reconcile(ledgerStore, 2, []string{"alice", "bob"})

		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, ledger)
		assert.Zero(t, ledgerStore.saves)
	})

	t.Run("short ledger is rebuilt and persisted", func(t *testing.T) {
		ledgerStore := &memLedger{}

		ledger, err := Reconcile(ledgerStore, 5, []string{"alice", "bob", "carol"})

		require.NoError(t, err)
		assert.Equal(t, []string{"unknown", "unknown", "unknown", "unknown", "unknown"}, ledger)
		assert.Equal(t, ledger, ledgerStore.entries)
		assert.Equal(t, 1, ledgerStore.saves)
	})

	t.Run("long ledger is rebuilt", func(t *testing.T) {
		ledger, err := Reconcile(&memLedger{}, 1, []string{"alice", "bob"})

		require.NoError(t, err)
		assert.Equal(t, []string{"unknown"}, ledger)
	})

	t.Run("persist failure is reported with the rebuilt ledger", func(t *testing.T) {
		ledger, err := Reconcile(&memLedger{err: errBroken}, 2, nil)

		assert.ErrorIs(t, err, errBroken)
		assert.Len(t, ledger, 2)
	})
}

func TestValidatePosition(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		length    int
		expected  int
		persisted bool
	}{
		{name: "valid", value: 2, length: 3, expected: 2},
		{name: "zero on empty queue", value: 0, length: 0, expected: 0},
		{name: "past the end", value: 3, length: 3, expected: 0, persisted: true},
		{name: "negative", value: -1, length: 3, expected: 0, persisted: true},
		{name: "stale on empty queue", value: 4, length: 0, expected: 0, persisted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persisted := -1
			value, err := validatePosition("Base offset", tt.value, tt.length, func(v int) error {
				persisted = v
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
			if tt.persisted {
				assert.Equal(t, 0, persisted)
			} else {
				assert.Equal(t, -1, persisted)
			}
		})
	}
}
