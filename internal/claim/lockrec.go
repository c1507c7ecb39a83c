package claim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iron-Ham/foreman/internal/errors"
)

// ErrRecordExists indicates a lock record already exists for the key.
var ErrRecordExists = errors.New("lock record already exists")

// Key identifies a lock record: one claimed task held by one agent.
type Key struct {
	TaskID  string
	AgentID string
}

// String returns the canonical "<task_id>.<agent_id>" form used in
// filenames and reap reports.
func (k Key) String() string {
	return k.TaskID + "." + k.AgentID
}

// Metadata is the JSON body of a lock record. The record's existence is
// the proof of ownership; the body is diagnostics only.
type Metadata struct {
	Holder string    `json:"holder"`
	Since  time.Time `json:"since"`
}

// Held is a lock record found on disk.
type Held struct {
	Key  Key
	Meta Metadata
	Path string
}

// Records manages the on-disk lock records in agent_locks/. Creating a
// record is the step that actually serializes racing claim attempts: the
// create-exclusive semantics guarantee at most one creation per key can
// succeed process-wide. Registry mutation alone is not sufficient proof
// of exclusivity, since racing agents may act on stale snapshots.
type Records struct {
	dir string
}

// NewRecords creates a Records over the given lock directory.
func NewRecords(dir string) *Records {
	return &Records{dir: dir}
}

// Path returns the record path for the given key.
func (r *Records) Path(k Key) string {
	return filepath.Join(r.dir, k.String()+".lock")
}

// Acquire atomically creates the lock record for the key, failing with
// ErrRecordExists if one is already present. The O_EXCL create must be
// atomic at the OS level: it is the at-most-one-claimant guarantee, not
// an optimization.
func (r *Records) Acquire(k Key) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	f, err := os.OpenFile(r.Path(k), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrRecordExists, k)
		}
		return fmt.Errorf("create lock record: %w", err)
	}
	defer func() { _ = f.Close() }()

	meta := Metadata{Holder: k.AgentID, Since: time.Now().UTC()}
	if err := json.NewEncoder(f).Encode(meta); err != nil {
		// A bodiless record still proves ownership; remove it so a
		// failed write does not leave the task unclaimable.
		_ = os.Remove(r.Path(k))
		return fmt.Errorf("write lock metadata: %w", err)
	}
	return nil
}

// Remove deletes the lock record for the key. A missing record is not an
// error.
func (r *Records) Remove(k Key) error {
	if err := os.Remove(r.Path(k)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock record: %w", err)
	}
	return nil
}

// Read returns the metadata of the record for the key.
func (r *Records) Read(k Key) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(r.Path(k))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse lock record %s: %w", r.Path(k), err)
	}
	return meta, nil
}

// List returns every lock record currently on disk. The key is
// reconstructed from the record metadata (the holder field identifies the
// agent half) rather than by naive delimiter splitting; the filename is
// only consulted as a fallback for records with unreadable bodies.
func (r *Records) List() ([]Held, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lock dir: %w", err)
	}

	var held []Held
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".lock") {
			continue
		}
		path := filepath.Join(r.dir, name)
		stem := strings.TrimSuffix(name, ".lock")

		var meta Metadata
		data, readErr := os.ReadFile(path)
		if readErr == nil {
			_ = json.Unmarshal(data, &meta)
		}

		var key Key
		if meta.Holder != "" && strings.HasSuffix(stem, "."+meta.Holder) {
			key = Key{
				TaskID:  strings.TrimSuffix(stem, "."+meta.Holder),
				AgentID: meta.Holder,
			}
		} else if i := strings.LastIndex(stem, "."); i > 0 {
			key = Key{TaskID: stem[:i], AgentID: stem[i+1:]}
		} else {
			// Not a record we wrote; leave it alone.
			continue
		}

		held = append(held, Held{Key: key, Meta: meta, Path: path})
	}
	return held, nil
}
