// Copyright 2023 Gustavo C. Viegas. All rights reserved.

//go:build linux || windows

package ctxt

import (
	_ "github.com/arcusgl/spherelod/driver/sw"
)

func init() {
	if err := loadDriver("software"); err != nil {
		// Try all drivers.
		if err = loadDriver(""); err != nil {
			panic(err)
		}
	}
}
