package storage

import (
	"encoding/json"
	"os"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
)

// Snapshot persists the memory backend as a single JSON document.
type Snapshot struct {
	filePath string
}

type snapshotData struct {
	Orders  []*lifecycle.Order                  `json:"orders"`
	History map[string][]lifecycle.StatusChange `json:"history"`
}

func NewSnapshot(filePath string) *Snapshot {
	return &Snapshot{filePath: filePath}
}

func (s *Snapshot) Load() ([]*lifecycle.Order, map[string][]lifecycle.StatusChange, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer file.Close()

	var data snapshotData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, nil, err
	}
	return data.Orders, data.History, nil
}

func (s *Snapshot) Save(orders []*lifecycle.Order, history map[string][]lifecycle.StatusChange) error {
	file, err := os.Create(s.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshotData{Orders: orders, History: history})
}
