package balancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecision_ZeroValueIsNoDecision(t *testing.T) {
	var d Decision
	assert.False(t, d.Actionable())
	assert.False(t, d.FreesToGlobal())
	assert.Equal(t, "no decision", d.String())
}

func TestDecision_MoveBetweenClasses(t *testing.T) {
	d := MoveDecision(5, 9)
	assert.True(t, d.Actionable())
	assert.False(t, d.FreesToGlobal())
	assert.Equal(t, "move page from class 5 to class 9", d.String())
}

func TestDecision_FreeToGlobal(t *testing.T) {
	d := MoveDecision(5, GlobalPool)
	assert.True(t, d.Actionable())
	assert.True(t, d.FreesToGlobal())
	assert.Equal(t, "free page from class 5 to global pool", d.String())
}
