package flat

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
)

// Persisted index layout: two co-located artifacts per tenant.
//
//   - vectors.bin: versioned header followed by the raw embedding matrix
//     as little-endian float32, entries in insertion order.
//   - chunks.db:   SQLite table of chunk text and metadata, keyed by the
//     same insertion position.
//
// Load requires both artifacts to be present and to agree on entry count;
// anything else is domain.ErrIndexNotFound or domain.ErrCorruptIndex. A
// missing index must never be served as an empty one, since that would
// mask an un-ingested tenant as a tenant with zero knowledge.
const (
	// VectorsFile is the embedding matrix artifact name.
	VectorsFile = "vectors.bin"

	// ChunksFile is the chunk text and metadata artifact name.
	ChunksFile = "chunks.db"
)

// vectorsMagic identifies the vectors.bin format.
var vectorsMagic = [4]byte{'K', 'B', 'V', 'X'}

// vectorsVersion is the current vectors.bin format version.
const vectorsVersion uint32 = 1

// vectorsHeader is the fixed-size prefix of vectors.bin.
type vectorsHeader struct {
	Magic     [4]byte
	Version   uint32
	Dimension uint32
	Count     uint32
}

// Save persists the full entry set to dir, replacing any prior state.
// Both artifacts are written to temporary files and renamed into place so
// a crash mid-save cannot leave a half-written artifact under the final name.
func (ix *Index) Save(dir string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	if err := ix.saveVectors(dir); err != nil {
		return err
	}
	return ix.saveChunks(dir)
}

func (ix *Index) saveVectors(dir string) error {
	tmp := filepath.Join(dir, VectorsFile+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating vectors file: %w", err)
	}
	defer os.Remove(tmp)

	w := bufio.NewWriter(f)
	header := vectorsHeader{
		Magic:     vectorsMagic,
		Version:   vectorsVersion,
		Dimension: uint32(ix.dimension),
		Count:     uint32(len(ix.entries)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		f.Close()
		return fmt.Errorf("writing vectors header: %w", err)
	}

	for i := range ix.entries {
		if _, err := w.Write(float32SliceToBytes(ix.entries[i].Embedding)); err != nil {
			f.Close()
			return fmt.Errorf("writing vectors: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flushing vectors: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing vectors file: %w", err)
	}

	if err := os.Rename(tmp, filepath.Join(dir, VectorsFile)); err != nil {
		return fmt.Errorf("renaming vectors file: %w", err)
	}
	return nil
}

func (ix *Index) saveChunks(dir string) error {
	tmp := filepath.Join(dir, ChunksFile+".tmp")
	os.Remove(tmp)
	defer os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return fmt.Errorf("opening chunks database: %w", err)
	}

	if err := writeChunks(db, ix.entries); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing chunks database: %w", err)
	}

	if err := os.Rename(tmp, filepath.Join(dir, ChunksFile)); err != nil {
		return fmt.Errorf("renaming chunks database: %w", err)
	}
	return nil
}

func writeChunks(db *sql.DB, entries []domain.Entry) error {
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE chunks (
			position    INTEGER PRIMARY KEY,
			content     TEXT    NOT NULL,
			document_id TEXT    NOT NULL,
			ordinal     INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating chunks table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, content, document_id, ordinal)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range entries {
		e := &entries[i]
		if _, err := stmt.ExecContext(ctx, i, e.Text, e.Ref.DocumentID, e.Ref.Ordinal); err != nil {
			return fmt.Errorf("saving chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load restores a persisted index from dir. Fails with
// domain.ErrIndexNotFound when either artifact is missing and with
// domain.ErrCorruptIndex when the artifacts are unreadable or disagree
// on entry count.
func Load(dir string) (*Index, error) {
	vectorsPath := filepath.Join(dir, VectorsFile)
	chunksPath := filepath.Join(dir, ChunksFile)

	for _, p := range []string{vectorsPath, chunksPath} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, p)
			}
			return nil, fmt.Errorf("checking index artifact %s: %w", p, err)
		}
	}

	dimension, vectors, err := loadVectors(vectorsPath)
	if err != nil {
		return nil, err
	}

	texts, refs, err := loadChunks(chunksPath)
	if err != nil {
		return nil, err
	}

	if len(texts) != len(vectors) {
		return nil, fmt.Errorf("%w: %d vectors but %d chunks",
			domain.ErrCorruptIndex, len(vectors), len(texts))
	}

	entries := make([]domain.Entry, len(vectors))
	for i := range vectors {
		entries[i] = domain.Entry{
			Embedding: vectors[i],
			Text:      texts[i],
			Ref:       refs[i],
		}
	}

	return &Index{dimension: dimension, entries: entries}, nil
}

func loadVectors(path string) (int, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("opening vectors file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header vectorsHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, nil, fmt.Errorf("%w: reading vectors header: %v", domain.ErrCorruptIndex, err)
	}
	if !bytes.Equal(header.Magic[:], vectorsMagic[:]) {
		return 0, nil, fmt.Errorf("%w: bad magic in vectors file", domain.ErrCorruptIndex)
	}
	if header.Version != vectorsVersion {
		return 0, nil, fmt.Errorf("%w: unsupported vectors version %d",
			domain.ErrCorruptIndex, header.Version)
	}
	if header.Count > 0 && header.Dimension == 0 {
		return 0, nil, fmt.Errorf("%w: dimension cannot be determined", domain.ErrCorruptIndex)
	}

	dim := int(header.Dimension)
	vectors := make([][]float32, header.Count)
	row := make([]byte, dim*4)
	for i := range vectors {
		if _, err := io.ReadFull(r, row); err != nil {
			return 0, nil, fmt.Errorf("%w: truncated vectors file at entry %d",
				domain.ErrCorruptIndex, i)
		}
		vectors[i] = bytesToFloat32Slice(row)
	}

	// Trailing bytes mean the header count disagrees with the payload.
	if _, err := r.ReadByte(); err != io.EOF {
		return 0, nil, fmt.Errorf("%w: vectors file longer than header count", domain.ErrCorruptIndex)
	}

	return dim, vectors, nil
}

func loadChunks(path string) ([]string, []domain.Ref, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening chunks database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(context.Background(), `
		SELECT content, document_id, ordinal
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrCorruptIndex, err)
	}
	defer rows.Close()

	var texts []string
	var refs []domain.Ref
	for rows.Next() {
		var text string
		var ref domain.Ref
		if err := rows.Scan(&text, &ref.DocumentID, &ref.Ordinal); err != nil {
			return nil, nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrCorruptIndex, err)
		}
		texts = append(texts, text)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: reading chunks: %v", domain.ErrCorruptIndex, err)
	}

	return texts, refs, nil
}

// float32SliceToBytes converts a []float32 to little-endian bytes for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, v := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// bytesToFloat32Slice converts little-endian bytes back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
