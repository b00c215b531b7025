// Package v3dpbd reads the header of Vaa3D packed-bit-difference volume files.
// Only the header is decoded; the compressed voxel data is ignored.
package v3dpbd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/soypat/geometry/ms3"
)

// Magic starts every v3dpbd file.
const Magic = "v3d_volume_pkbitdf_encod"

// HeaderSize is the length in bytes of the encoded header.
const HeaderSize = len(Magic) + 1 + 2 + 4*4

var ErrInvalidHeader = errors.New("invalid v3dpbd header")

// Header is the decoded v3dpbd header.
type Header struct {
	ByteOrder binary.ByteOrder
	// DataType is the voxel data type code, 1 for uint8, 2 for uint16 and 4 for float32.
	DataType uint16
	// Size is the volume size along x, y, z and channels.
	Size [4]uint32
}

// Range returns the box spanning the volume's voxels, [0, size) along each spatial axis.
func (h Header) Range() ms3.Box {
	return ms3.Box{
		Max: ms3.Vec{X: float32(h.Size[0]), Y: float32(h.Size[1]), Z: float32(h.Size[2])},
	}
}

// Read decodes a header from the start of r.
func Read(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	_, err := io.ReadFull(r, buf[:])
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return Header{}, fmt.Errorf("%w: short header", ErrInvalidHeader)
	} else if err != nil {
		return Header{}, err
	}
	if !bytes.HasPrefix(buf[:], []byte(Magic)) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, buf[:len(Magic)])
	}
	var h Header
	switch endian := buf[len(Magic)]; endian {
	case 'L':
		h.ByteOrder = binary.LittleEndian
	case 'B':
		h.ByteOrder = binary.BigEndian
	default:
		return Header{}, fmt.Errorf("%w: unknown endianness %q", ErrInvalidHeader, endian)
	}
	off := len(Magic) + 1
	h.DataType = h.ByteOrder.Uint16(buf[off:])
	off += 2
	for i := range h.Size {
		h.Size[i] = h.ByteOrder.Uint32(buf[off+4*i:])
	}
	return h, nil
}

// ReadFile decodes the header of the named file.
func ReadFile(name string) (Header, error) {
	fp, err := os.Open(name)
	if err != nil {
		return Header{}, err
	}
	defer fp.Close()
	h, err := Read(fp)
	if err != nil {
		return Header{}, fmt.Errorf("%s: %w", name, err)
	}
	return h, nil
}

// Write encodes h. A nil ByteOrder writes little endian.
func Write(w io.Writer, h Header) error {
	order := h.ByteOrder
	endian := byte('L')
	if order == nil {
		order = binary.LittleEndian
	} else if order == binary.BigEndian {
		endian = 'B'
	}
	var buf [HeaderSize]byte
	copy(buf[:], Magic)
	buf[len(Magic)] = endian
	off := len(Magic) + 1
	order.PutUint16(buf[off:], h.DataType)
	off += 2
	for i, sz := range h.Size {
		order.PutUint32(buf[off+4*i:], sz)
	}
	_, err := w.Write(buf[:])
	return err
}
