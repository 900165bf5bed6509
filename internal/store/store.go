// Package store keeps the per-epoch states of training runs on the local file system:
// one file per epoch under <root>/<run id>/.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// StateExt is the extension of state files.
const StateExt = ".state"

// ErrRemoteRoot is returned for roots that are URLs (e.g. "hdfs://..."): only local
// directories can be used.
var ErrRemoteRoot = errors.New("store root is not a local directory")

// ErrNotFound is returned when a run has no stored state.
var ErrNotFound = errors.New("state not found")

// Store saves and loads states. It is safe for concurrent use as long as no two callers
// write the same run and epoch.
type Store struct {
	root string
}

// New creates root if needed and returns a store on it.
func New(root string) (*Store, error) {
	if strings.Contains(root, "://") {
		return nil, errors.Wrapf(ErrRemoteRoot, "%q", root)
	}
	if root == "" {
		return nil, errors.Wrap(ErrRemoteRoot, "empty root")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, errors.Wrapf(err, "creating store root %q", root)
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the file holding the state of a run's epoch.
func (s *Store) Path(runID string, epoch int) string {
	return filepath.Join(s.root, runID, fmt.Sprintf("epoch-%04d%s", epoch, StateExt))
}

// Save writes state atomically and returns its path. An absent state is stored as an
// empty file.
func (s *Store) Save(runID string, epoch int, state []byte) (string, error) {
	path := s.Path(runID, epoch)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrapf(err, "creating run directory %q", dir)
	}

	tmp, err := os.CreateTemp(dir, ".epoch-*"+StateExt)
	if err != nil {
		return "", errors.Wrap(err, "creating temporary state file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(state); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", errors.Wrapf(err, "writing %q", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Wrapf(err, "closing %q", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Wrapf(err, "renaming state to %q", path)
	}
	return path, nil
}

// Load reads the state of a run's epoch.
func (s *Store) Load(runID string, epoch int) ([]byte, error) {
	path := s.Path(runID, epoch)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotFound, "run %s epoch %d", runID, epoch)
	}
	return ReadFile(path)
}

// Epochs lists the stored epochs of a run in increasing order.
func (s *Store) Epochs(runID string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, runID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "listing run %s", runID)
	}
	var epochs []int
	for _, e := range entries {
		var epoch int
		if e.IsDir() || !strings.HasSuffix(e.Name(), StateExt) {
			continue
		}
		if _, err := fmt.Sscanf(e.Name(), "epoch-%d"+StateExt, &epoch); err == nil {
			epochs = append(epochs, epoch)
		}
	}
	sort.Ints(epochs)
	return epochs, nil
}

// Latest returns the last stored epoch of a run and its state.
func (s *Store) Latest(runID string) (int, []byte, error) {
	epochs, err := s.Epochs(runID)
	if err != nil {
		return 0, nil, err
	}
	if len(epochs) == 0 {
		return 0, nil, errors.Wrapf(ErrNotFound, "run %s", runID)
	}
	epoch := epochs[len(epochs)-1]
	state, err := s.Load(runID, epoch)
	return epoch, state, err
}
