// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package driver_test

import (
	"log"

	"github.com/arcusgl/spherelod/driver"
	_ "github.com/arcusgl/spherelod/driver/sw"
)

var (
	drv driver.Driver
	gpu driver.GPU
)

func init() {
	// Select a driver to use.
	drivers := driver.Drivers()
drvLoop:
	for i := range drivers {
		switch drivers[i].Name() {
		case "software":
			drv = drivers[i]
			break drvLoop
		}
	}
	if drv == nil {
		log.Fatal("driver.Drivers(): driver not found")
	}
	var err error
	gpu, err = drv.Open()
	if err != nil {
		log.Fatal(err)
	}
	// Ideally, we should call drv.Close somewhere.
}

const (
	NFrame   = 3
	Samples  = 4
	DepthFmt = driver.D16un
)
