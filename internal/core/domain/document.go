package domain

import "time"

// DocumentVersion is written into every exported backup.
const DocumentVersion = 1

// LedgerDocument is the self-describing backup format of the whole ledger.
type LedgerDocument struct {
	Version      int           `json:"version,omitempty"`
	ExportedAt   *time.Time    `json:"exportedAt,omitempty"`
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}
