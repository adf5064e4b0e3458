package rowstore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/rowmap/codec"
	"github.com/hupe1980/rowmap/model"
)

// Row log layout:
//
//	header: "RMLG" | version u8 | compression u8 | codec name len u8 | codec name
//	entry:  op u8 | enc u8 | key len u32 | raw len u32 | payload len u32 | key | payload
//
// enc records the per-entry payload encoding: incompressible payloads are
// stored raw even when the log is configured for compression.
const (
	logMagic   = "RMLG"
	logVersion = 1

	opPut    byte = 1
	opDelete byte = 2

	entryHeaderSize = 14

	// maxEntrySize bounds key and payload lengths during replay so a
	// corrupt length field cannot trigger a huge allocation.
	maxEntrySize = 64 << 20
)

var (
	// ErrLogCorrupt is returned when a row log fails structural validation.
	ErrLogCorrupt = errors.New("row log corrupt")

	// ErrUnknownCodec is returned when a log header names a codec this
	// build does not provide.
	ErrUnknownCodec = errors.New("unknown codec")
)

// appendLog is the durable backing of a FileStore: an append-only sequence
// of put/delete entries. It is not locked internally; FileStore serializes
// appends.
type appendLog struct {
	file        *os.File
	codec       codec.Codec
	compression Compression
	syncWrites  bool

	zenc *zstd.Encoder
	zdec *zstd.Decoder
}

func openLog(path string, opts Options) (*appendLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600) //nolint:gosec // G304: Path is configurable
	if err != nil {
		return nil, fmt.Errorf("failed to open row log: %w", err)
	}

	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat row log: %w", err)
	}

	l := &appendLog{
		file:        file,
		codec:       opts.Codec,
		compression: opts.Compression,
		syncWrites:  opts.SyncWrites,
	}

	if st.Size() == 0 {
		if err := l.writeHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	} else {
		// Existing logs are self-describing: header codec/compression win.
		if err := l.readHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	if l.compression == CompressionZstd {
		if l.zenc, err = zstd.NewWriter(nil); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to init zstd encoder: %w", err)
		}
		if l.zdec, err = zstd.NewReader(nil); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("failed to init zstd decoder: %w", err)
		}
	}

	return l, nil
}

func (l *appendLog) writeHeader() error {
	name := l.codec.Name()
	if len(name) > 255 {
		return fmt.Errorf("codec name too long: %q", name)
	}

	buf := make([]byte, 0, 7+len(name))
	buf = append(buf, logMagic...)
	buf = append(buf, logVersion, byte(l.compression), byte(len(name)))
	buf = append(buf, name...)

	if _, err := l.file.Write(buf); err != nil {
		return fmt.Errorf("failed to write row log header: %w", err)
	}
	return l.file.Sync()
}

func (l *appendLog) readHeader() error {
	fixed := make([]byte, 7)
	if _, err := io.ReadFull(l.file, fixed); err != nil {
		return fmt.Errorf("%w: short header", ErrLogCorrupt)
	}
	if string(fixed[:4]) != logMagic {
		return fmt.Errorf("%w: bad magic", ErrLogCorrupt)
	}
	if fixed[4] != logVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrLogCorrupt, fixed[4])
	}
	if fixed[5] > byte(CompressionLZ4) {
		return fmt.Errorf("%w: unknown compression %d", ErrLogCorrupt, fixed[5])
	}
	l.compression = Compression(fixed[5])

	name := make([]byte, fixed[6])
	if _, err := io.ReadFull(l.file, name); err != nil {
		return fmt.Errorf("%w: short header", ErrLogCorrupt)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCodec, string(name))
	}
	l.codec = c
	return nil
}

func (l *appendLog) headerSize() int64 {
	return int64(7 + len(l.codec.Name()))
}

// replay applies all intact entries in append order. A torn final entry
// (crash mid-append) is truncated; any other structural damage is an error.
// After replay the file is positioned for appending.
func (l *appendLog) replay(apply func(op byte, key model.Key, row *model.Row) error) error {
	offset := l.headerSize()
	if _, err := l.file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek row log: %w", err)
	}

	r := bufio.NewReader(l.file)
	hdr := make([]byte, entryHeaderSize)

	for {
		if _, err := io.ReadFull(r, hdr); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return l.truncate(offset)
			}
			return fmt.Errorf("failed to read row log entry: %w", err)
		}

		op := hdr[0]
		enc := hdr[1]
		keyLen := binary.LittleEndian.Uint32(hdr[2:6])
		rawLen := binary.LittleEndian.Uint32(hdr[6:10])
		payLen := binary.LittleEndian.Uint32(hdr[10:14])

		if op != opPut && op != opDelete {
			return fmt.Errorf("%w: unknown op %d", ErrLogCorrupt, op)
		}
		if keyLen == 0 || keyLen > maxEntrySize || rawLen > maxEntrySize || payLen > maxEntrySize {
			return fmt.Errorf("%w: implausible entry lengths", ErrLogCorrupt)
		}

		body := make([]byte, int(keyLen)+int(payLen))
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return l.truncate(offset)
			}
			return fmt.Errorf("failed to read row log entry: %w", err)
		}

		key := model.Key(body[:keyLen])

		var row *model.Row
		if op == opPut {
			raw, err := l.decompress(enc, rawLen, body[keyLen:])
			if err != nil {
				return err
			}
			row = model.NewRow()
			if err := l.codec.Unmarshal(raw, row); err != nil {
				return fmt.Errorf("%w: undecodable row for key %q: %v", ErrLogCorrupt, key, err)
			}
		}

		if err := apply(op, key, row); err != nil {
			return err
		}

		offset += entryHeaderSize + int64(keyLen) + int64(payLen)
	}

	if _, err := l.file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek row log: %w", err)
	}
	return nil
}

func (l *appendLog) truncate(offset int64) error {
	if err := l.file.Truncate(offset); err != nil {
		return fmt.Errorf("failed to truncate torn row log tail: %w", err)
	}
	if _, err := l.file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek row log: %w", err)
	}
	return nil
}

// append encodes and writes one entry. row is nil for deletes.
func (l *appendLog) append(op byte, key model.Key, row *model.Row) error {
	var raw []byte
	if row != nil {
		var err error
		if raw, err = l.codec.Marshal(row); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}

	payload, enc := l.compress(raw)

	buf := make([]byte, entryHeaderSize, entryHeaderSize+len(key)+len(payload))
	buf[0] = op
	buf[1] = enc
	binary.LittleEndian.PutUint32(buf[2:6], uint32(len(key)))
	binary.LittleEndian.PutUint32(buf[6:10], uint32(len(raw)))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(len(payload)))
	buf = append(buf, key...)
	buf = append(buf, payload...)

	if _, err := l.file.Write(buf); err != nil {
		return fmt.Errorf("failed to append to row log: %w", err)
	}
	if l.syncWrites {
		if err := l.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync row log: %w", err)
		}
	}
	return nil
}

// compress returns the payload and the per-entry encoding byte.
// Payloads that do not shrink are stored raw.
func (l *appendLog) compress(raw []byte) ([]byte, byte) {
	if len(raw) == 0 {
		return nil, byte(CompressionNone)
	}

	switch l.compression {
	case CompressionZstd:
		enc := l.zenc.EncodeAll(raw, nil)
		if len(enc) >= len(raw) {
			return raw, byte(CompressionNone)
		}
		return enc, byte(CompressionZstd)
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		var c lz4.Compressor
		n, err := c.CompressBlock(raw, dst)
		if err != nil || n == 0 || n >= len(raw) {
			return raw, byte(CompressionNone)
		}
		return dst[:n], byte(CompressionLZ4)
	default:
		return raw, byte(CompressionNone)
	}
}

func (l *appendLog) decompress(enc byte, rawLen uint32, payload []byte) ([]byte, error) {
	switch Compression(enc) {
	case CompressionNone:
		if uint32(len(payload)) != rawLen {
			return nil, fmt.Errorf("%w: raw payload length mismatch", ErrLogCorrupt)
		}
		return payload, nil
	case CompressionZstd:
		if l.zdec == nil {
			return nil, fmt.Errorf("%w: zstd entry in non-zstd log", ErrLogCorrupt)
		}
		raw, err := l.zdec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrLogCorrupt, err)
		}
		if uint32(len(raw)) != rawLen {
			return nil, fmt.Errorf("%w: zstd payload length mismatch", ErrLogCorrupt)
		}
		return raw, nil
	case CompressionLZ4:
		raw := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrLogCorrupt, err)
		}
		if uint32(n) != rawLen {
			return nil, fmt.Errorf("%w: lz4 payload length mismatch", ErrLogCorrupt)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: unknown entry encoding %d", ErrLogCorrupt, enc)
	}
}

func (l *appendLog) close() error {
	if l.zdec != nil {
		l.zdec.Close()
	}
	if l.zenc != nil {
		_ = l.zenc.Close()
	}
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return fmt.Errorf("failed to sync row log: %w", err)
	}
	return l.file.Close()
}
