package sticker

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"math"

	"sticqr/internal/fileutil"
)

const (
	// signature (8) + IHDR length, type, 13 data bytes, crc
	ihdrEnd       = 8 + 4 + 4 + 13 + 4
	metresPerInch = 0.0254
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Save writes img as a PNG that records dpi in its pHYs chunk.
func Save(path string, img image.Image, dpi int) error {
	data, err := Encode(img, dpi)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save sticker: %w", err)
	}
	return nil
}

// Encode returns PNG bytes for img with a pHYs chunk placed after IHDR.
func Encode(img image.Image, dpi int) ([]byte, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("encode sticker: invalid dpi %d", dpi)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode sticker: %w", err)
	}
	raw := buf.Bytes()
	if len(raw) < ihdrEnd || !bytes.Equal(raw[:8], pngSignature) || string(raw[12:16]) != "IHDR" {
		return nil, errors.New("encode sticker: unexpected png layout")
	}

	out := make([]byte, 0, len(raw)+21)
	out = append(out, raw[:ihdrEnd]...)
	out = append(out, physChunk(dpi)...)
	out = append(out, raw[ihdrEnd:]...)
	return out, nil
}

// PixelsPerMetre converts dots per inch to the unit stored in pHYs.
func PixelsPerMetre(dpi int) uint32 {
	return uint32(math.Round(float64(dpi) / metresPerInch))
}

func physChunk(dpi int) []byte {
	ppm := PixelsPerMetre(dpi)
	chunk := make([]byte, 0, 21)
	chunk = binary.BigEndian.AppendUint32(chunk, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = append(chunk, 1)
	return binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))
}

// ReadDPI extracts the resolution recorded in a PNG's pHYs chunk.
func ReadDPI(data []byte) (int, bool) {
	if len(data) < 8 || !bytes.Equal(data[:8], pngSignature) {
		return 0, false
	}
	for off := 8; off+12 <= len(data); {
		length := int(binary.BigEndian.Uint32(data[off : off+4]))
		kind := string(data[off+4 : off+8])
		body := off + 8
		if body+length+4 > len(data) {
			return 0, false
		}
		if kind == "pHYs" && length == 9 && data[body+8] == 1 {
			ppm := binary.BigEndian.Uint32(data[body : body+4])
			return int(math.Round(float64(ppm) * metresPerInch)), true
		}
		if kind == "IDAT" || kind == "IEND" {
			return 0, false
		}
		off = body + length + 4
	}
	return 0, false
}
