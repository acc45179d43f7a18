// Package node holds the records the graph engine exchanges with the nodes it
// schedules: node identity, output points, connections and output groups.
package node

import (
	"assetgraph/internal/asset"

	"github.com/google/uuid"
)

// DefaultOutput is the label of the single output slot a loader publishes on.
const DefaultOutput = "0"

// Point is a named output of a node.
type Point struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Data is the engine-side record of a node.
type Data struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	OutputPoints []Point `json:"output_points"`
}

func NewData(name string) *Data {
	return &Data{
		ID:   uuid.New().String(),
		Name: name,
	}
}

// AddDefaultOutputPoint declares the default output slot once.
func (d *Data) AddDefaultOutputPoint() Point {
	for _, p := range d.OutputPoints {
		if p.Label == DefaultOutput {
			return p
		}
	}
	p := Point{ID: uuid.New().String(), Label: DefaultOutput}
	d.OutputPoints = append(d.OutputPoints, p)
	return p
}

// Connection links an output point of one node to an input of another.
type Connection struct {
	ID        string `json:"id"`
	FromNode  string `json:"from_node"`
	FromPoint string `json:"from_point"`
	ToNode    string `json:"to_node"`
	ToPoint   string `json:"to_point,omitempty"`
}

// Groups maps a group key to the references published under it.
type Groups map[string][]*asset.Reference

// Emit publishes one evaluation result. conn is nil when the node has no
// downstream connection; the result is then computed but discarded.
type Emit func(conn *Connection, out Groups)
