package queue

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LedgerStore persists the contributor ledger, one contributor id per playlist position,
// starting at position 0. Save always rewrites the whole sequence.
type LedgerStore interface {
	Load() ([]string, error)
	Save(ledger []string) error
	Close() error
}

// FileLedger keeps the ledger as a YAML sequence in a single file
type FileLedger struct {
	filename string
}

func NewFileLedger(filename string) *FileLedger {
	return &FileLedger{filename: filename}
}

func (l *FileLedger) Load() ([]string, error) {
	rawLedger, err := os.ReadFile(l.filename)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("No contributor ledger at %s, starting empty", l.filename)
			return []string{}, nil
		}
		return nil, fmt.Errorf("unable to read ledger file: %w", err)
	}

	ledger := []string{}
	if err = yaml.Unmarshal(rawLedger, &ledger); err != nil {
		return nil, fmt.Errorf("unable to interpret ledger file: %w", err)
	}
	return ledger, nil
}

func (l *FileLedger) Save(ledger []string) error {
	if ledger == nil {
		ledger = []string{}
	}
	rawLedger, err := yaml.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("unable to serialize ledger: %w", err)
	}

	if err = renameio.WriteFile(l.filename, rawLedger, 0660); err != nil {
		return fmt.Errorf("unable to save ledger file: %w", err)
	}
	return nil
}

func (l *FileLedger) Close() error {
	return nil
}
