package store

import (
	"os"

	"github.com/pkg/errors"
)

// MappedFile gives read-only memory-mapped access to a state file. Large states are paged
// in by the OS instead of being read up front.
type MappedFile struct {
	file   *os.File
	data   []byte // mmap'd region (read-only); nil for empty files
	closed bool
}

// OpenMapped maps the file at path into memory.
//
// Important: Always call Close() when done to unmap the file (use defer).
func OpenMapped(path string) (*MappedFile, error) {
	//nolint:gosec // G304: state path is provided by the user
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "stat %q", path)
	}

	m := &MappedFile{file: file}
	if stat.Size() == 0 {
		return m, nil
	}
	m.data, err = mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "mmap %q", path)
	}
	return m, nil
}

// Bytes returns the mapped content. It is only valid until Close and must not be modified.
func (m *MappedFile) Bytes() []byte {
	return m.data
}

// Len returns the file size.
func (m *MappedFile) Len() int {
	return len(m.data)
}

// Close unmaps and closes the file.
func (m *MappedFile) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var err error
	if m.data != nil {
		err = munmapFile(m.data)
		m.data = nil
	}
	if closeErr := m.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// ReadFile returns a copy of the content of the state file at path. An empty file yields
// nil, the absent state.
func ReadFile(path string) ([]byte, error) {
	m, err := OpenMapped(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()
	if m.Len() == 0 {
		return nil, nil
	}
	out := make([]byte, m.Len())
	copy(out, m.Bytes())
	return out, nil
}
