package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/homewire/homewire-go/pkg/list"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrSizeMismatch is returned when a saved image does not match the
// requested storage size.
var ErrSizeMismatch = errors.New("storage image size mismatch")

// StorageState is the JSON form of a storage image.
type StorageState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the image was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Image is the raw storage content.
	Image []byte `json:"image"`
}

// FileStorage is a list.Storage kept in memory and saved to a JSON file.
type FileStorage struct {
	*list.Memory

	mu   sync.Mutex
	path string
	now  func() time.Time
}

var _ list.Storage = (*FileStorage)(nil)

// OpenFileStorage loads the image at path. A missing file yields a zeroed
// image of size bytes and fresh set; callers then run FirstInit.
func OpenFileStorage(path string, size int) (s *FileStorage, fresh bool, err error) {
	s = &FileStorage{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.Memory = list.NewMemory(size)
		return s, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading state file: %w", err)
	}

	var state StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("parsing state file: %w", err)
	}
	if state.Version != StateVersion {
		return nil, false, fmt.Errorf("state file version %d, want %d", state.Version, StateVersion)
	}
	if len(state.Image) != size {
		return nil, false, fmt.Errorf("%w: file has %d bytes, want %d", ErrSizeMismatch, len(state.Image), size)
	}
	s.Memory = list.NewMemoryFrom(state.Image)
	return s, false, nil
}

// Path returns the state file path.
func (s *FileStorage) Path() string {
	return s.path
}

// Save writes the image to disk.
func (s *FileStorage) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(StorageState{
		Version: StateVersion,
		SavedAt: s.now(),
		Image:   s.Snapshot(),
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the state file.
func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
