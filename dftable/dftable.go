// Package dftable describes the BQ28Z610 data flash as typed, named fields and
// works with dump images taken from a gauge.
//
// Tables are YAML documents:
//
//	fields:
//	  - {addr: 0x462A, type: I2, key: design_capacity_mah, name: "Gas Gauging / Design / Design Capacity mAh"}
//
// A default table is embedded; LoadFile replaces it with an external one.
package dftable

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
)

//go:embed default.yaml
var defaultYAML []byte

// Field is one typed data-flash value.
type Field struct {
	Addr uint16
	Type Type
	Key  string
	Name string
	Unit string
}

// End is the last byte address occupied by the field.
func (f Field) End() uint16 { return f.Addr + uint16(f.Type.Size()) - 1 }

type fieldDoc struct {
	Addr string `yaml:"addr"`
	Type string `yaml:"type"`
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	Unit string `yaml:"unit,omitempty"`
}

type tableDoc struct {
	Fields []fieldDoc `yaml:"fields"`
}

// Table is an address-ordered set of fields with lookup by key.
type Table struct {
	fields []Field
	byKey  map[string]int
	byAddr map[uint16]int
}

// Load parses and checks a YAML table.
func Load(r io.Reader) (*Table, error) {
	var doc tableDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "dftable_load", Err: err}
	}
	fields := make([]Field, 0, len(doc.Fields))
	for i, fd := range doc.Fields {
		f, err := fd.field()
		if err != nil {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "dftable_load", Msg: "field " + strconv.Itoa(i), Err: err}
		}
		fields = append(fields, f)
	}
	return newTable(fields)
}

// LoadFile reads a table from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

var (
	defOnce  sync.Once
	defTable *Table
)

// Default returns the embedded table.
func Default() *Table {
	defOnce.Do(func() {
		t, err := Load(bytes.NewReader(defaultYAML))
		if err != nil {
			panic("dftable: embedded table: " + err.Error())
		}
		defTable = t
	})
	return defTable
}

func (fd fieldDoc) field() (Field, error) {
	addr, err := strconv.ParseUint(fd.Addr, 0, 16)
	if err != nil {
		return Field{}, err
	}
	t := Type(strings.ToUpper(fd.Type))
	if !t.Valid() {
		return Field{}, errcode.New(errcode.InvalidParams, "", "unknown type "+fd.Type)
	}
	if fd.Key == "" {
		return Field{}, errcode.New(errcode.InvalidParams, "", "missing key")
	}
	f := Field{Addr: uint16(addr), Type: t, Key: fd.Key, Name: fd.Name, Unit: fd.Unit}
	if !bq28z610.IsDataFlashAddress(f.Addr) || !bq28z610.IsDataFlashAddress(f.End()) {
		return Field{}, errcode.New(errcode.Range, "", "outside data flash: "+fd.Addr)
	}
	if f.Name == "" {
		f.Name = f.Key
	}
	return f, nil
}

func newTable(fields []Field) (*Table, error) {
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Addr < fields[j].Addr })
	t := &Table{
		fields: fields,
		byKey:  make(map[string]int, len(fields)),
		byAddr: make(map[uint16]int, len(fields)),
	}
	for i, f := range fields {
		if i > 0 && fields[i-1].End() >= f.Addr {
			return nil, errcode.New(errcode.InvalidParams, "dftable_load", f.Key+" overlaps "+fields[i-1].Key)
		}
		k := strings.ToLower(f.Key)
		if _, dup := t.byKey[k]; dup {
			return nil, errcode.New(errcode.InvalidParams, "dftable_load", "duplicate key "+f.Key)
		}
		t.byKey[k] = i
		t.byAddr[f.Addr] = i
	}
	return t, nil
}

// Fields returns the fields in address order. The slice must not be modified.
func (t *Table) Fields() []Field { return t.fields }

// At returns the field starting at addr.
func (t *Table) At(addr uint16) (Field, bool) {
	i, ok := t.byAddr[addr]
	if !ok {
		return Field{}, false
	}
	return t.fields[i], true
}

// Lookup finds a field by key (case-insensitive) or by its start address
// written as a number ("0x462A").
func (t *Table) Lookup(ref string) (Field, bool) {
	if i, ok := t.byKey[strings.ToLower(ref)]; ok {
		return t.fields[i], true
	}
	if a, err := strconv.ParseUint(ref, 0, 16); err == nil {
		return t.At(uint16(a))
	}
	return Field{}, false
}
