package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineMovesForward(t *testing.T) {
	m := NewMachine()
	var entered []Phase
	m.OnEnter(Active, func() { entered = append(entered, Active) })
	m.OnEnter(Complete, func() { entered = append(entered, Complete) })

	assert.Equal(t, Idle, m.Current())
	require.NoError(t, m.Begin())
	assert.Equal(t, Active, m.Current())
	require.NoError(t, m.Complete())
	assert.Equal(t, Complete, m.Current())

	assert.Equal(t, []Phase{Active, Complete}, entered)
}

func TestMachineRejectsReentry(t *testing.T) {
	m := NewMachine()
	calls := 0
	m.OnEnter(Active, func() { calls++ })

	require.NoError(t, m.Begin())
	assert.ErrorIs(t, m.Begin(), ErrInvalidTransition)
	assert.Equal(t, 1, calls)

	require.NoError(t, m.Complete())
	assert.ErrorIs(t, m.Complete(), ErrInvalidTransition)
	assert.ErrorIs(t, m.Begin(), ErrInvalidTransition)
}

func TestMachineCannotSkipActive(t *testing.T) {
	m := NewMachine()
	assert.ErrorIs(t, m.Complete(), ErrInvalidTransition)
	assert.Equal(t, Idle, m.Current())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "Phase(7)", Phase(7).String())
}
