package bq28z610

import "bq28z610-go/errcode"

// DumpDataFlash walks data flash in 32-byte blocks from 0x4000 to 0x5FE0 and
// hands each chunk to fn. chunk is reused between calls. The first error from
// the gauge or from fn stops the walk. The sealed check runs once.
func (d *Device) DumpDataFlash(fn func(addr uint16, chunk []byte) error) error {
	d.mu.Lock()
	err := d.guardSealed("df_dump")
	d.mu.Unlock()
	if err != nil {
		return err
	}
	var chunk [PayloadMax]byte
	last := DataFlashMax - PayloadMax + 1
	for addr := DataFlashMin; addr <= last; addr += PayloadMax {
		if err := d.dumpChunk(addr, &chunk); err != nil {
			return err
		}
		if err := fn(addr, chunk[:]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) dumpChunk(addr uint16, chunk *[PayloadMax]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.readBlock(addr, chunk[:])
	if err != nil {
		return err
	}
	if n < PayloadMax {
		return errcode.New(errcode.Checksum, "df_dump", "short payload")
	}
	return nil
}
