// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unidavemeyer/web-adventure/internal/layout"
)

func TestRenderTemplate(t *testing.T) {
	vars := layout.Vars{"gold": 15, "luck": 3}

	tests := []struct {
		name     string
		tpl      string
		expected string
	}{
		{"no placeholders", "plain text", "plain text"},
		{"known variable", "you have {gold} gold", "you have 15 gold"},
		{"unknown defaults to zero", "mana: {mana}", "mana: 0"},
		{"multiple placeholders", "{gold} gold, {luck} luck, {mana} mana", "15 gold, 3 luck, 0 mana"},
		{"adjacent braces untouched", "set {} aside", "set {} aside"},
		{"numeric-leading name untouched", "{1bad}", "{1bad}"},
		{"underscore name", "{coin_count}", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, layout.RenderTemplate(tt.tpl, vars))
		})
	}
}

// Substitution is a single pass: a substituted value is never re-scanned
// for placeholders.
func TestRenderTemplate_SinglePass(t *testing.T) {
	vars := layout.Vars{"a": 1}
	assert.Equal(t, "1 {a", layout.RenderTemplate("{a} {a", vars))
}
