package models

import "time"

// ContractEntry is one key/value pair held by the sql-backed contract store.
type ContractEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     []byte    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContractEntry) TableName() string {
	return "contract_entries"
}
