// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unidavemeyer/web-adventure/internal/layout"
)

func TestApply_Order(t *testing.T) {
	vars := layout.Vars{}
	layout.Apply([]layout.ChangeOp{
		layout.Set{Var: "gold", Value: 10},
		layout.Add{Var: "gold", Delta: 5},
		layout.Set{Var: "gold", Value: 1},
		layout.Add{Var: "gold", Delta: 2},
	}, vars)
	assert.Equal(t, 3, vars.GetOrZero("gold"))
}

func TestAdd_MissingVariableReadsZero(t *testing.T) {
	vars := layout.Vars{}
	layout.Apply([]layout.ChangeOp{layout.Add{Var: "gold", Delta: 7}}, vars)
	assert.Equal(t, 7, vars.GetOrZero("gold"))
}

func TestSet_Overwrites(t *testing.T) {
	vars := layout.Vars{"gold": 99}
	layout.Apply([]layout.ChangeOp{layout.Set{Var: "gold", Value: 1}}, vars)
	assert.Equal(t, 1, vars.GetOrZero("gold"))
}

// Random ops are not reproducible, so these assert bounds, never values.
func TestSetRandom_Bounds(t *testing.T) {
	vars := layout.Vars{}
	op := layout.SetRandom{Var: "roll", Low: 2, High: 5}
	for range 200 {
		op.Apply(vars)
		got := vars.GetOrZero("roll")
		assert.GreaterOrEqual(t, got, 2)
		assert.LessOrEqual(t, got, 5)
	}
}

func TestSetRandom_SingleValueRange(t *testing.T) {
	vars := layout.Vars{}
	layout.SetRandom{Var: "roll", Low: 4, High: 4}.Apply(vars)
	assert.Equal(t, 4, vars.GetOrZero("roll"))
}

func TestSetRandom_InvertedRangeIsNoOp(t *testing.T) {
	vars := layout.Vars{"roll": 9}
	layout.SetRandom{Var: "roll", Low: 5, High: 2}.Apply(vars)
	assert.Equal(t, 9, vars.GetOrZero("roll"))
}

func TestAddRandom_Bounds(t *testing.T) {
	vars := layout.Vars{}
	op := layout.AddRandom{Var: "gold", Low: 1, High: 3}
	total := 0
	for i := 1; i <= 50; i++ {
		op.Apply(vars)
		got := vars.GetOrZero("gold")
		assert.GreaterOrEqual(t, got, total+1)
		assert.LessOrEqual(t, got, total+3)
		total = got
	}
}

func TestAddRandom_NegativeRange(t *testing.T) {
	vars := layout.Vars{"gold": 100}
	op := layout.AddRandom{Var: "gold", Low: -2, High: 2}
	for range 100 {
		before := vars.GetOrZero("gold")
		op.Apply(vars)
		after := vars.GetOrZero("gold")
		assert.GreaterOrEqual(t, after, before-2)
		assert.LessOrEqual(t, after, before+2)
	}
}

func TestVars_Clone(t *testing.T) {
	vars := layout.Vars{"gold": 5}
	clone := vars.Clone()
	clone.Set("gold", 10)
	assert.Equal(t, 5, vars.GetOrZero("gold"))
	assert.Equal(t, 10, clone.GetOrZero("gold"))
}
