package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommissionPolicy(t *testing.T) {
	p := NewCommissionPolicy(0)
	assert.Equal(t, DefaultCommissionThreshold, p.Threshold)

	assert.False(t, p.RequiresApproval(3.0), "standard rate needs no approval")
	assert.True(t, p.RequiresApproval(2.5))
	assert.True(t, p.RequiresApproval(5.0))

	custom := NewCommissionPolicy(4.0)
	assert.False(t, custom.RequiresApproval(4.0))
	assert.True(t, custom.RequiresApproval(3.0))
}
