package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/kotoba-dict/kotoba/pkg/errors"
)

const (
	// MagicNumber identifies snapshot files (ASCII: "KTBX").
	MagicNumber = 0x4B544258
	// FormatVersion is the current snapshot file format (v1.0).
	FormatVersion = 0x00010000
)

// fileHeader precedes the gob payload. Fixed size, little endian.
type fileHeader struct {
	Magic      uint32
	Format     uint32
	PayloadLen uint64
	Checksum   uint32 // CRC32 (IEEE) of the payload
	Reserved   [12]byte
}

func init() {
	gob.Register(&WordEntry{})
	gob.Register(&KanjiEntry{})
	gob.Register(&NameEntry{})
	gob.Register(&SentenceEntry{})
}

// WriteSnapshot serializes s to w: a fixed header with magic, format
// version and payload checksum, followed by the gob-encoded snapshot.
func WriteSnapshot(w io.Writer, s *Snapshot) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	header := fileHeader{
		Magic:      MagicNumber,
		Format:     FormatVersion,
		PayloadLen: uint64(payload.Len()),
		Checksum:   crc32.ChecksumIEEE(payload.Bytes()),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("write snapshot payload: %w", err)
	}
	return nil
}

// ReadSnapshot deserializes a snapshot written by WriteSnapshot. It
// returns ErrIndexVersion for a format mismatch and ErrIndexLoad for a
// corrupt or truncated file.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var header fileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", apperrors.ErrIndexLoad, err)
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: bad magic 0x%08x", apperrors.ErrIndexLoad, header.Magic)
	}
	if header.Format != FormatVersion {
		return nil, fmt.Errorf("%w: format 0x%08x, want 0x%08x",
			apperrors.ErrIndexVersion, header.Format, FormatVersion)
	}
	payload := make([]byte, header.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", apperrors.ErrIndexLoad, err)
	}
	if sum := crc32.ChecksumIEEE(payload); sum != header.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch 0x%08x != 0x%08x",
			apperrors.ErrIndexLoad, sum, header.Checksum)
	}
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", apperrors.ErrIndexLoad, err)
	}
	return &snap, nil
}

// SaveFile writes the snapshot to path atomically: the bytes go to a
// temp file in the same directory which is then renamed over the target,
// so a concurrent reader never sees a half-written file.
func SaveFile(path string, s *Snapshot) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := WriteSnapshot(buf, s); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""
	return nil
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrIndexLoad, err)
	}
	defer f.Close()
	return ReadSnapshot(bufio.NewReaderSize(f, 256*1024))
}
