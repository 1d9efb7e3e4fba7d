package trace

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// Archive layout, all integers little endian:
//
//	[magic:4 "BTTR"][version:2][metaLen:4][meta JSON]
//	per variable: [nameLen:2][name] then per chain: [blockLen:4][snappy block][crc32:4]
//
// A block holds Draws float64 values. The checksum covers the compressed bytes.
const (
	archiveMagic   = "BTTR"
	archiveVersion = uint16(1)
	maxBlockSize   = 1 << 30
)

var ErrBadArchive = errors.New("not a trace archive")

type archiveMeta struct {
	RunID     string    `json:"run_id"`
	Model     string    `json:"model"`
	Chains    int       `json:"chains"`
	Draws     int       `json:"draws"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
	Variables []string  `json:"variables"`
}

// WriteArchive serialises t to w. An incomplete trace writes nothing.
func WriteArchive(w io.Writer, t *Trace) error {
	if err := t.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	meta, err := json.Marshal(archiveMeta{
		RunID:     t.RunID,
		Model:     t.Model,
		Chains:    t.Chains,
		Draws:     t.Draws,
		Seed:      t.Seed,
		CreatedAt: t.CreatedAt,
		Variables: t.order,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal archive metadata: %w", err)
	}

	if _, err := bw.WriteString(archiveMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, archiveVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(meta))); err != nil {
		return err
	}
	if _, err := bw.Write(meta); err != nil {
		return err
	}

	raw := make([]byte, 8*t.Draws)
	for _, name := range t.order {
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(name))); err != nil {
			return err
		}
		if _, err := bw.WriteString(name); err != nil {
			return err
		}
		for _, draws := range t.values[name] {
			for i, v := range draws {
				binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
			}
			block := snappy.Encode(nil, raw)
			if err := binary.Write(bw, binary.LittleEndian, uint32(len(block))); err != nil {
				return err
			}
			if _, err := bw.Write(block); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, crc32.ChecksumIEEE(block)); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// ReadArchive parses an archive written by WriteArchive.
func ReadArchive(r io.Reader) (*Trace, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(archiveMagic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != archiveMagic {
		return nil, ErrBadArchive
	}
	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != archiveVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArchive, version)
	}

	var metaLen uint32
	if err := binary.Read(br, binary.LittleEndian, &metaLen); err != nil {
		return nil, err
	}
	if metaLen > maxBlockSize {
		return nil, fmt.Errorf("%w: metadata of %d bytes", ErrBadArchive, metaLen)
	}
	metaBytes := make([]byte, metaLen)
	if _, err := io.ReadFull(br, metaBytes); err != nil {
		return nil, err
	}
	var meta archiveMeta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	t := &Trace{
		RunID:     meta.RunID,
		Model:     meta.Model,
		Chains:    meta.Chains,
		Draws:     meta.Draws,
		Seed:      meta.Seed,
		CreatedAt: meta.CreatedAt,
		values:    make(map[string][][]float64, len(meta.Variables)),
	}

	for range meta.Variables {
		var nameLen uint16
		if err := binary.Read(br, binary.LittleEndian, &nameLen); err != nil {
			return nil, err
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(br, nameBytes); err != nil {
			return nil, err
		}
		name := string(nameBytes)

		for c := 0; c < t.Chains; c++ {
			draws, err := readBlock(br, t.Draws)
			if err != nil {
				return nil, fmt.Errorf("variable %q chain %d: %w", name, c, err)
			}
			if err := t.Set(name, c, draws); err != nil {
				return nil, err
			}
		}
	}

	return t, nil
}

func readBlock(r io.Reader, draws int) ([]float64, error) {
	var blockLen uint32
	if err := binary.Read(r, binary.LittleEndian, &blockLen); err != nil {
		return nil, err
	}
	if blockLen > maxBlockSize {
		return nil, fmt.Errorf("%w: block of %d bytes", ErrBadArchive, blockLen)
	}
	block := make([]byte, blockLen)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, err
	}
	var checksum uint32
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(block) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrBadArchive)
	}

	raw, err := snappy.Decode(nil, block)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress block: %w", err)
	}
	if len(raw) != 8*draws {
		return nil, fmt.Errorf("%w: block holds %d bytes, want %d", ErrBadArchive, len(raw), 8*draws)
	}
	out := make([]float64, draws)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out, nil
}

// SaveArchive writes t to path, creating parent directories.
func SaveArchive(path string, t *Trace) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteArchive(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// OpenArchive reads an archive through a memory map.
func OpenArchive(path string) (*Trace, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return ReadArchive(io.NewSectionReader(reader, 0, int64(reader.Len())))
}
