// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build progressdebug

package progress

import "fmt"

func assertf(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("progress: "+format, args...))
	}
}
