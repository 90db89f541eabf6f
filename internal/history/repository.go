package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMalformedLedger is returned when the ledger file parses as JSON but is
// not an array of entries. Strict callers (backfill) abort on it; the
// collection path may treat the file as replaceable.
var ErrMalformedLedger = errors.New("ledger is not a JSON array")

// Repository is the persistence boundary for the ledger. The file-backed
// implementation is the system of record; MemoryRepository backs tests.
type Repository interface {
	// Load returns all entries. A missing backing store yields an empty
	// slice, not an error.
	Load() ([]Entry, error)
	// Append persists entries after the existing ones, preserving their
	// relative order. No deduplication occurs.
	Append(entries []Entry) error
	// Rewrite replaces the whole ledger with entries.
	Rewrite(entries []Entry) error
}

// FileRepository stores the ledger as a single JSON array on disk.
type FileRepository struct {
	Path string
}

// NewFileRepository returns a repository backed by the file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{Path: path}
}

// Load reads the ledger file. A missing file is an empty ledger. A file that
// parses but is not an array returns ErrMalformedLedger; any other read or
// parse failure is returned as-is with the path attached.
func (r *FileRepository) Load() ([]Entry, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read ledger %s: %w", r.Path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return nil, fmt.Errorf("ledger %s: %w", r.Path, ErrMalformedLedger)
		}
		return nil, fmt.Errorf("parse ledger %s: %w", r.Path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Append loads the current ledger, concatenates entries after it and writes
// the whole file back. A ledger that is valid JSON but not an array is
// treated as replaceable here; the new entries become the whole ledger.
func (r *FileRepository) Append(entries []Entry) error {
	existing, err := r.Load()
	if err != nil {
		if !errors.Is(err, ErrMalformedLedger) {
			return err
		}
		existing = nil
	}
	return r.Rewrite(append(existing, entries...))
}

// Rewrite overwrites the ledger atomically: the new content is written to a
// temp file in the same directory and renamed over the old one, so readers
// never observe a partial write.
func (r *FileRepository) Rewrite(entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(r.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("write ledger %s: %w", r.Path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger %s: %w", r.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write ledger %s: %w", r.Path, err)
	}
	if err := os.Rename(tmpName, r.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write ledger %s: %w", r.Path, err)
	}
	return nil
}

// MemoryRepository keeps the ledger in a slice. It exists for tests and for
// dry runs; it implements the same contract as FileRepository.
type MemoryRepository struct {
	Entries []Entry
}

func (m *MemoryRepository) Load() ([]Entry, error) {
	out := make([]Entry, len(m.Entries))
	copy(out, m.Entries)
	return out, nil
}

func (m *MemoryRepository) Append(entries []Entry) error {
	m.Entries = append(m.Entries, entries...)
	return nil
}

func (m *MemoryRepository) Rewrite(entries []Entry) error {
	m.Entries = make([]Entry, len(entries))
	copy(m.Entries, entries)
	return nil
}
