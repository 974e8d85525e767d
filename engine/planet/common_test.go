// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"github.com/arcusgl/spherelod/driver"
	_ "github.com/arcusgl/spherelod/driver/sw"
)

// gpu is the headless driver shared by every test in this package
// that needs a real driver.GPU to back a NodeStore or DrawPacker.
var gpu driver.GPU

func init() {
	for _, d := range driver.Drivers() {
		if d.Name() == "software" {
			g, err := d.Open()
			if err != nil {
				panic(err)
			}
			gpu = g
			return
		}
	}
	panic("planet: software driver not registered")
}
