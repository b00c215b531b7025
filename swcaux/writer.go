package swcaux

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"
)

// SliceReader yields slices until io.EOF. [render.StackRenderer] implements it.
type SliceReader interface {
	Next() (*image.Gray, error)
}

// TIFF tags and field types used by the stack writer.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284

	typeShort = 3
	typeLong  = 4

	numIFDEntries = 10
	ifdSize       = 2 + 12*numIFDEntries + 4
)

var errNoSlices = errors.New("no slices to write")

// WriteTIFFStack writes every slice of src as one page of an uncompressed 8-bit
// grayscale little endian TIFF. It returns the amount of pages written.
func WriteTIFFStack(w io.Writer, src SliceReader) (pages int, err error) {
	cur, err := src.Next()
	if err == io.EOF {
		return 0, errNoSlices
	} else if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	var hdr [8]byte
	copy(hdr[:4], "II*\x00")
	dataOff := uint32(len(hdr))
	binary.LittleEndian.PutUint32(hdr[4:], dataOff+paddedLen(cur))
	if _, err = bw.Write(hdr[:]); err != nil {
		return 0, err
	}
	for cur != nil {
		// Next page is read ahead so the IFD can point to it.
		next, err := src.Next()
		if err != nil && err != io.EOF {
			return pages, err
		}
		ifdOff := dataOff + paddedLen(cur)
		var nextIFD uint32
		if next != nil {
			nextIFD = ifdOff + ifdSize + paddedLen(next)
		}
		if err = writeTIFFPage(bw, cur, dataOff, nextIFD); err != nil {
			return pages, err
		}
		pages++
		dataOff = ifdOff + ifdSize
		cur = next
	}
	return pages, bw.Flush()
}

// paddedLen is the byte length of img's pixels padded to a word boundary.
func paddedLen(img *image.Gray) uint32 {
	n := uint32(img.Rect.Dx() * img.Rect.Dy())
	return n + n&1
}

// writeTIFFPage writes img's pixels followed by its IFD.
func writeTIFFPage(w io.Writer, img *image.Gray, dataOff, nextIFD uint32) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		if _, err := w.Write(img.Pix[start : start+width]); err != nil {
			return err
		}
	}
	n := uint32(width * height)
	if n&1 != 0 {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}
	entries := [numIFDEntries][3]uint32{
		{tagImageWidth, typeLong, uint32(width)},
		{tagImageLength, typeLong, uint32(height)},
		{tagBitsPerSample, typeShort, 8},
		{tagCompression, typeShort, 1},
		{tagPhotometric, typeShort, 1}, // Black is zero.
		{tagStripOffsets, typeLong, dataOff},
		{tagSamplesPerPixel, typeShort, 1},
		{tagRowsPerStrip, typeLong, uint32(height)},
		{tagStripByteCounts, typeLong, n},
		{tagPlanarConfig, typeShort, 1},
	}
	var ifd [ifdSize]byte
	le := binary.LittleEndian
	le.PutUint16(ifd[:], numIFDEntries)
	for i, e := range entries {
		ent := ifd[2+12*i:]
		le.PutUint16(ent[0:], uint16(e[0]))
		le.PutUint16(ent[2:], uint16(e[1]))
		le.PutUint32(ent[4:], 1)
		if e[1] == typeShort {
			le.PutUint16(ent[8:], uint16(e[2]))
		} else {
			le.PutUint32(ent[8:], e[2])
		}
	}
	le.PutUint32(ifd[2+12*numIFDEntries:], nextIFD)
	_, err := w.Write(ifd[:])
	return err
}

// WriteImageDir writes every slice of src to dir as numbered files 0.tif, 1.tif...
// or 0.png, 1.png... depending on format. The directory is created if needed.
func WriteImageDir(dir string, src SliceReader, format string) (n int, err error) {
	var encode func(io.Writer, image.Image) error
	switch format {
	case FormatTIFF:
		encode = func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Uncompressed})
		}
	case FormatPNG:
		encode = png.Encode
	default:
		return 0, fmt.Errorf("invalid image format %q", format)
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return 0, err
	}
	for {
		img, err := src.Next()
		if err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, err
		}
		name := filepath.Join(dir, fmt.Sprintf("%d.%s", n, format))
		err = writeImageFile(name, img, encode)
		if err != nil {
			return n, err
		}
		n++
	}
}

func writeImageFile(name string, img image.Image, encode func(io.Writer, image.Image) error) error {
	fp, err := os.Create(name)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fp)
	err = encode(bw, img)
	if err == nil {
		err = bw.Flush()
	}
	if closeErr := fp.Close(); err == nil {
		err = closeErr
	}
	return err
}
