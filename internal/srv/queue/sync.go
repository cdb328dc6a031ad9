package queue

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// UnknownContributor stands in for attributions lost while rebuilding the ledger
const UnknownContributor = "unknown"

// Reconcile returns a ledger as long as the playlist. A ledger of any other length is
// replaced by trackCount placeholders, which is persisted before returning.
func Reconcile(ledgerStore LedgerStore, trackCount int, ledger []string) ([]string, error) {
	if len(ledger) == trackCount {
		return ledger, nil
	}

	logrus.Warnf("Contributor ledger has %d entries for %d playlist tracks, rebuilding it with %q placeholders",
		len(ledger), trackCount, UnknownContributor)

	rebuilt := make([]string, trackCount)
	for i := range rebuilt {
		rebuilt[i] = UnknownContributor
	}
	if err := ledgerStore.Save(rebuilt); err != nil {
		return rebuilt, fmt.Errorf("unable to persist rebuilt ledger: %w", err)
	}
	return rebuilt, nil
}

// validatePosition resets an index that does not address the queue to 0 and persists it
func validatePosition(name string, value int, length int, persist func(int) error) (int, error) {
	if value >= 0 && (value < length || value == 0) {
		return value, nil
	}

	logrus.Warnf("%s %d is out of range for %d tracks, reset to 0", name, value, length)
	if err := persist(0); err != nil {
		return 0, fmt.Errorf("unable to persist %s: %w", name, err)
	}
	return 0, nil
}
