package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	apperrors "github.com/language-coach/sentence-search/pkg/errors"
)

// On-disk layout, big endian: magic, version, payload length, JSON payload,
// CRC32 (IEEE) of the payload.
const (
	fileMagic   uint32 = 0x53494458 // "SIDX"
	fileVersion uint16 = 1
)

type snapshot struct {
	Language string             `json:"language"`
	IDs      []int64            `json:"ids"`
	Texts    []string           `json:"texts"`
	Tokens   [][]string         `json:"tokens"`
	Metadata map[int64]Metadata `json:"metadata"`
}

// Filename returns the index file name for a language code.
func Filename(language string) string {
	return fmt.Sprintf("sentence_index_%s.idx", language)
}

// Save writes the index to dir atomically: the snapshot goes to a temp file
// that is renamed over the target only after a successful fsync.
func (idx *SentenceIndex) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	idx.mu.RLock()
	snap := snapshot{
		Language: idx.language,
		IDs:      idx.ids,
		Texts:    idx.texts,
		Tokens:   idx.tokens,
		Metadata: idx.metadata,
	}
	payload, err := json.Marshal(snap)
	idx.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal index snapshot: %w", err)
	}

	path := filepath.Join(dir, Filename(idx.language))
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := writeFrame(w, payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write index file: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush index file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync index file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close index file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename index file: %w", err)
	}
	return nil
}

// Load reads a previously saved index for the given language from dir.
// A missing file surfaces as os.ErrNotExist; framing or checksum failures
// surface as ErrIndexCorrupt.
func Load(dir, language string) (*SentenceIndex, error) {
	path := filepath.Join(dir, Filename(language))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	payload, err := readFrame(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
	}
	if len(snap.IDs) != len(snap.Texts) || len(snap.IDs) != len(snap.Tokens) {
		return nil, fmt.Errorf("%w: %s: section lengths disagree", apperrors.ErrIndexCorrupt, path)
	}

	idx := New(snap.Language)
	for i, id := range snap.IDs {
		if err := idx.Add(id, snap.Texts[i], snap.Tokens[i]); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrIndexCorrupt, path, err)
		}
	}
	for id, md := range snap.Metadata {
		idx.SetMetadata(id, md)
	}
	return idx, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	if err := binary.Write(w, binary.BigEndian, fileMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, fileVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint64(len(payload))); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, crc32.ChecksumIEEE(payload))
}

func readFrame(r io.Reader) ([]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, err
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("bad magic 0x%08x", magic)
	}
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	if version != fileVersion {
		return nil, fmt.Errorf("unsupported version %d", version)
	}
	var payloadLen uint64
	if err := binary.Read(r, binary.BigEndian, &payloadLen); err != nil {
		return nil, err
	}
	const maxPayload = 1 << 32
	if payloadLen > maxPayload {
		return nil, fmt.Errorf("payload length %d exceeds limit", payloadLen)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	var sum uint32
	if err := binary.Read(r, binary.BigEndian, &sum); err != nil {
		return nil, err
	}
	if got := crc32.ChecksumIEEE(payload); got != sum {
		return nil, fmt.Errorf("checksum mismatch: got 0x%08x, want 0x%08x", got, sum)
	}
	return payload, nil
}
