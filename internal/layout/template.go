// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Web-Adventure Contributors

package layout

import (
	"regexp"
	"strconv"
)

// placeholderPattern matches {name} placeholders in room and verb text.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// RenderTemplate substitutes every {name} placeholder with the variable's
// value, defaulting unknown names to 0. The substitution is a single pass
// over the template; placeholder values are never re-scanned.
func RenderTemplate(tpl string, vars Vars) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		name := match[1 : len(match)-1]
		return strconv.Itoa(vars.GetOrZero(name))
	})
}
