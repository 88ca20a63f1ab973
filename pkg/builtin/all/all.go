// Package all links every native library into the catalog.
package all

import (
	_ "cellar/pkg/builtin/mathlib"
	_ "cellar/pkg/builtin/strlib"
)
