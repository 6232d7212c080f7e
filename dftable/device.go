package dftable

import "bq28z610-go/drivers/bq28z610"

// Accessor is the data-flash surface of *bq28z610.Device.
type Accessor interface {
	ReadDataFlash(addr uint16, out []byte) error
	WriteDataFlash(addr uint16, data []byte) error
}

// Dumper is implemented by *bq28z610.Device.
type Dumper interface {
	DumpDataFlash(fn func(addr uint16, chunk []byte) error) error
}

var _ interface {
	Accessor
	Dumper
} = (*bq28z610.Device)(nil)

// ReadField reads and decodes f from the gauge.
func ReadField(a Accessor, f Field) (Value, error) {
	var buf [bq28z610.PayloadMax]byte
	raw := buf[:f.Type.Size()]
	if err := a.ReadDataFlash(f.Addr, raw); err != nil {
		return Value{}, err
	}
	return f.Decode(raw)
}

// WriteField encodes text as f and writes it to the gauge.
func WriteField(a Accessor, f Field, text string) error {
	b, err := f.Encode(text)
	if err != nil {
		return err
	}
	return a.WriteDataFlash(f.Addr, b)
}

// ReadImage dumps the whole data flash into an Image.
func ReadImage(d Dumper) (Image, error) {
	img := make(Image, int(bq28z610.DataFlashMax-bq28z610.DataFlashMin)+1)
	err := d.DumpDataFlash(func(addr uint16, chunk []byte) error {
		img.Put(addr, chunk)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}
