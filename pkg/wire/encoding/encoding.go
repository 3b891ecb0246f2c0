// Package encoding provides the primitives used to serialize blocks and
// transactions for the archive and the exporter. Integers use the compact
// variable-length format, digests are written raw.
package encoding

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriteUint8 will write a single byte to w.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint8 will read a single byte from r into v.
func ReadUint8(r io.Reader, v *uint8) error {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}

	*v = b[0]
	return nil
}

// WriteUint16LE will write a little-endian uint16 to w.
func WriteUint16LE(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadUint16LE will read a little-endian uint16 from r into v.
func ReadUint16LE(r io.Reader, v *uint16) error {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}

	*v = binary.LittleEndian.Uint16(b[:])
	return nil
}

// WriteUint32LE will write a little-endian uint32 to w.
func WriteUint32LE(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadUint32LE will read a little-endian uint32 from r into v.
func ReadUint32LE(r io.Reader, v *uint32) error {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}

	*v = binary.LittleEndian.Uint32(b[:])
	return nil
}

// WriteUint64LE will write a little-endian uint64 to w.
func WriteUint64LE(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadUint64LE will read a little-endian uint64 from r into v.
func ReadUint64LE(r io.Reader, v *uint64) error {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}

	*v = binary.LittleEndian.Uint64(b[:])
	return nil
}

// WriteVarInt writes a uint64 in the compact variable-length format:
// values below 0xfd take one byte, larger values take a marker byte
// followed by a 2, 4 or 8 byte little-endian integer.
func WriteVarInt(w io.Writer, v uint64) error {
	switch {
	case v < 0xfd:
		return WriteUint8(w, uint8(v))
	case v <= 0xffff:
		if err := WriteUint8(w, 0xfd); err != nil {
			return err
		}
		return WriteUint16LE(w, uint16(v))
	case v <= 0xffffffff:
		if err := WriteUint8(w, 0xfe); err != nil {
			return err
		}
		return WriteUint32LE(w, uint32(v))
	default:
		if err := WriteUint8(w, 0xff); err != nil {
			return err
		}
		return WriteUint64LE(w, v)
	}
}

// ReadVarInt reads a compact variable-length uint64 from r. Values must
// use the shortest possible encoding.
func ReadVarInt(r io.Reader) (uint64, error) {
	var marker uint8
	if err := ReadUint8(r, &marker); err != nil {
		return 0, err
	}

	switch marker {
	case 0xfd:
		var v uint16
		if err := ReadUint16LE(r, &v); err != nil {
			return 0, err
		}
		if v < 0xfd {
			return 0, errors.New("encoding: varint not canonical")
		}
		return uint64(v), nil
	case 0xfe:
		var v uint32
		if err := ReadUint32LE(r, &v); err != nil {
			return 0, err
		}
		if v <= 0xffff {
			return 0, errors.New("encoding: varint not canonical")
		}
		return uint64(v), nil
	case 0xff:
		var v uint64
		if err := ReadUint64LE(r, &v); err != nil {
			return 0, err
		}
		if v <= 0xffffffff {
			return 0, errors.New("encoding: varint not canonical")
		}
		return v, nil
	default:
		return uint64(marker), nil
	}
}

// WriteVarBytes writes a length-prefixed byte slice to w.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}

	_, err := w.Write(b)
	return err
}

// ReadVarBytes reads a length-prefixed byte slice from r into b.
func ReadVarBytes(r io.Reader, b *[]byte) error {
	n, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	if n > maxAlloc {
		return errors.Errorf("encoding: declared length %d exceeds limit", n)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}

	*b = buf
	return nil
}

// Write256 writes a 32-byte digest to w.
func Write256(w io.Writer, b []byte) error {
	if len(b) != 32 {
		return errors.Errorf("encoding: digest is %d bytes long instead of 32", len(b))
	}

	_, err := w.Write(b)
	return err
}

// Read256 reads a 32-byte digest from r into b.
func Read256(r io.Reader, b *[]byte) error {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}

	*b = buf
	return nil
}

// WriteBool writes a boolean as a single byte.
func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteUint8(w, 1)
	}
	return WriteUint8(w, 0)
}

// ReadBool reads a single-byte boolean from r into v.
func ReadBool(r io.Reader, v *bool) error {
	var b uint8
	if err := ReadUint8(r, &b); err != nil {
		return err
	}

	*v = b != 0
	return nil
}

// maxAlloc bounds a single ReadVarBytes allocation so a corrupt length
// prefix cannot exhaust memory.
const maxAlloc = 1 << 24
