package v3dpbd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/soypat/geometry/ms3"
)

func TestReadWrite(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		want := Header{ByteOrder: order, DataType: 1, Size: [4]uint32{512, 300, 77, 1}}
		var buf bytes.Buffer
		if err := Write(&buf, want); err != nil {
			t.Fatal(err)
		}
		if buf.Len() != HeaderSize {
			t.Fatalf("header size %d, want %d", buf.Len(), HeaderSize)
		}
		buf.WriteString("compressed voxel payload")
		got, err := Read(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%v: got %+v, want %+v", order, got, want)
		}
		rng := got.Range()
		wantRange := ms3.Box{Max: ms3.Vec{X: 512, Y: 300, Z: 77}}
		if rng != wantRange {
			t.Errorf("range: got %v, want %v", rng, wantRange)
		}
	}
}

func TestReadLittleEndianBytes(t *testing.T) {
	raw := []byte(Magic + "L")
	raw = append(raw, 2, 0)
	for _, v := range []uint32{10, 20, 30, 1} {
		raw = binary.LittleEndian.AppendUint32(raw, v)
	}
	h, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if h.DataType != 2 || h.Size != [4]uint32{10, 20, 30, 1} {
		t.Errorf("bad header %+v", h)
	}
}

func TestReadInvalid(t *testing.T) {
	valid := []byte(Magic + "L\x01\x00")
	valid = append(valid, make([]byte, 16)...)
	for name, raw := range map[string][]byte{
		"empty":  nil,
		"short":  valid[:HeaderSize-1],
		"magic":  append([]byte("v3d_volume_raw_xxxxxxxxx"), valid[len(Magic):]...),
		"endian": append(append([]byte(Magic), 'X'), valid[len(Magic)+1:]...),
	} {
		_, err := Read(bytes.NewReader(raw))
		if !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("%s: expected ErrInvalidHeader, got %v", name, err)
		}
	}
}
