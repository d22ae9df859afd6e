// Package unitypackage reads and writes the metadata header of
// .unitypackage files.
//
// A package is a gzip stream whose header carries the FEXTRA flag. The
// first extra subfield holds the package metadata as JSON:
//
//	offset  0  1f 8b 08 04   magic (little-endian int32 67668767)
//	offset 10  XLEN          total extra field length
//	offset 12  'A' 'U'       subfield id
//	offset 14  LEN           uint16 JSON length
//	offset 16  JSON ...
package unitypackage

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"asset-organizer/internal/organizer"
)

const (
	// Magic is the first four header bytes read as a little-endian int32.
	Magic int32 = 67668767

	lengthOffset = 14
	jsonOffset   = 16
)

// ReadHeaderJSON returns the raw metadata JSON from the package header
// in r. size is the total file size. Errors wrap
// organizer.ErrInvalidPackageFormat when the header is not valid.
func ReadHeaderJSON(r io.ReadSeeker, size int64) ([]byte, error) {
	var head [jsonOffset]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", organizer.ErrInvalidPackageFormat, err)
	}

	magic := int32(binary.LittleEndian.Uint32(head[0:4]))
	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic number %d, expected %d", organizer.ErrInvalidPackageFormat, magic, Magic)
	}

	length := int64(binary.LittleEndian.Uint16(head[lengthOffset:jsonOffset]))
	if length == 0 || length+jsonOffset >= size {
		return nil, fmt.Errorf("%w: bad data length %d for file of %d bytes", organizer.ErrInvalidPackageFormat, length, size)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: reading metadata: %w", organizer.ErrInvalidPackageFormat, err)
	}
	return data, nil
}

// WriteHeader writes a package to w: a gzip stream whose header carries
// metadata, wrapping payload.
func WriteHeader(w io.Writer, metadata []byte, payload []byte) error {
	if len(metadata) == 0 {
		return fmt.Errorf("writing package: empty metadata")
	}
	// The subfield length must fit the uint16 and the whole extra field too.
	if len(metadata) > math.MaxUint16-4 {
		return fmt.Errorf("writing package: metadata too large (%d bytes)", len(metadata))
	}

	extra := make([]byte, 4, 4+len(metadata))
	extra[0], extra[1] = 'A', 'U'
	binary.LittleEndian.PutUint16(extra[2:4], uint16(len(metadata)))
	extra = append(extra, metadata...)

	zw := gzip.NewWriter(w)
	zw.Header.Extra = extra
	if _, err := zw.Write(payload); err != nil {
		zw.Close()
		return fmt.Errorf("writing package payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing package: %w", err)
	}
	return nil
}

// BuildPackage returns the bytes of a package holding metadata and a tar
// payload with the given entries, keyed by path.
func BuildPackage(metadata []byte, entries map[string][]byte) ([]byte, error) {
	var payload bytes.Buffer
	tw := tar.NewWriter(&payload)
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		content := entries[name]
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("writing tar header %s: %w", name, err)
		}
		if _, err := tw.Write(content); err != nil {
			return nil, fmt.Errorf("writing tar entry %s: %w", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar payload: %w", err)
	}

	var out bytes.Buffer
	if err := WriteHeader(&out, metadata, payload.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
