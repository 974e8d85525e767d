// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package shader

import (
	"testing"

	"github.com/arcusgl/spherelod/driver"
)

func TestNewFrameHeap(t *testing.T) {
	dh, err := newFrameHeap()
	if err != nil {
		t.Fatalf("newFrameHeap failed:\n%#v", err)
	}
	defer dh.Destroy()
	if n := dh.Count(); n != 0 {
		t.Fatalf("newFrameHeap: DescHeap.Count:\nhave %d\nwant 0", n)
	}
	if err := dh.New(1); err != nil {
		t.Fatalf("DescHeap.New failed:\n%#v", err)
	}
	if n := dh.Count(); n != 1 {
		t.Fatalf("DescHeap.New: DescHeap.Count:\nhave %d\nwant 1", n)
	}
}

func TestNewDescTable(t *testing.T) {
	dt, err := newDescTable()
	if err != nil {
		t.Fatalf("newDescTable failed:\n%#v", err)
	}
	dt.Destroy()
}

func TestDescHelpers(t *testing.T) {
	for _, c := range [...]struct {
		name string
		f    func(int) driver.Descriptor
		typ  driver.DescType
	}{
		{"constantDesc", constantDesc, driver.DConstant},
		{"textureDesc", textureDesc, driver.DTexture},
		{"samplerDesc", samplerDesc, driver.DSampler},
	} {
		d := c.f(3)
		if d.Type != c.typ {
			t.Errorf("%s: Descriptor.Type:\nhave %v\nwant %v", c.name, d.Type, c.typ)
		}
		if d.Nr != 3 {
			t.Errorf("%s: Descriptor.Nr:\nhave %d\nwant 3", c.name, d.Nr)
		}
		if d.Len != 1 {
			t.Errorf("%s: Descriptor.Len:\nhave %d\nwant 1", c.name, d.Len)
		}
		if d.Stages&driver.SVertex == 0 || d.Stages&driver.SFragment == 0 {
			t.Errorf("%s: Descriptor.Stages:\nhave %v\nwant SVertex|SFragment set", c.name, d.Stages)
		}
	}
}
