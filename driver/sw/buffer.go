// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package sw

import (
	"github.com/arcusgl/spherelod/driver"
)

// Buffer implements driver.Buffer as a plain byte slice.
type Buffer struct {
	destroyed bool
	data      []byte
	visible   bool
	usage     driver.Usage
}

func (b *Buffer) Destroy() { b.destroyed = true; b.data = nil }

func (b *Buffer) Visible() bool { return b.visible }

func (b *Buffer) Bytes() []byte {
	if !b.visible {
		return nil
	}
	return b.data
}

func (b *Buffer) Cap() int64 { return int64(len(b.data)) }
