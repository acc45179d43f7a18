package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestData_AddDefaultOutputPoint(t *testing.T) {
	d := NewData("Load Scenes")
	require.NotEmpty(t, d.ID)

	first := d.AddDefaultOutputPoint()
	second := d.AddDefaultOutputPoint()

	assert.Equal(t, first, second)
	require.Len(t, d.OutputPoints, 1)
	assert.Equal(t, DefaultOutput, d.OutputPoints[0].Label)
}
