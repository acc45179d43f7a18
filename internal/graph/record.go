package graph

import (
	"time"

	"assetgraph/internal/loader"
	"assetgraph/internal/node"
)

// Record is the persisted form of a loader node.
type Record struct {
	Data        node.Data         `json:"data"`
	Connections []node.Connection `json:"connections,omitempty"`
	Settings    loader.Settings   `json:"settings"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (r *Record) GetID() string {
	return r.Data.ID
}
