package model

// StorageValue is one persisted key-value entry, the local analog of the
// browser storage the dashboard shell used to own.
type StorageValue struct {
	Key   string `json:"key" gorm:"primaryKey;size:64"`
	Value string `json:"value"`
}
