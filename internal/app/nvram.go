package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const nvramExtension = ".sav"

// NVRAMStore keeps battery backed cartridge RAM on disk, one file per
// cartridge fingerprint
type NVRAMStore struct {
	saveDirectory string
}

// SaveInfo describes one stored NVRAM image
type SaveInfo struct {
	Fingerprint string
	Size        int64
	Modified    time.Time
}

// NewNVRAMStore creates a store rooted at saveDirectory. The directory is
// created on the first Save.
func NewNVRAMStore(saveDirectory string) *NVRAMStore {
	return &NVRAMStore{saveDirectory: saveDirectory}
}

// Path returns the file holding the NVRAM of the cartridge with the given
// fingerprint
func (s *NVRAMStore) Path(fingerprint string) string {
	return filepath.Join(s.saveDirectory, fingerprint+nvramExtension)
}

// Load returns the stored NVRAM, or nil and no error when none was saved
func (s *NVRAMStore) Load(fingerprint string) ([]byte, error) {
	if fingerprint == "" {
		return nil, fmt.Errorf("empty cartridge fingerprint")
	}
	data, err := os.ReadFile(s.Path(fingerprint))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save data: %w", err)
	}
	return data, nil
}

// Save writes the NVRAM image. The file is replaced atomically so a crash
// leaves either the old or the new contents.
func (s *NVRAMStore) Save(fingerprint string, data []byte) error {
	if fingerprint == "" {
		return fmt.Errorf("empty cartridge fingerprint")
	}
	if err := os.MkdirAll(s.saveDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.saveDirectory, fingerprint+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create save file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(fingerprint)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}

// Delete removes the stored NVRAM. Deleting a missing image is not an error.
func (s *NVRAMStore) Delete(fingerprint string) error {
	err := os.Remove(s.Path(fingerprint))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete save file: %w", err)
	}
	return nil
}

// List returns the stored images sorted by fingerprint
func (s *NVRAMStore) List() ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.saveDirectory)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, nvramExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		saves = append(saves, SaveInfo{
			Fingerprint: strings.TrimSuffix(name, nvramExtension),
			Size:        info.Size(),
			Modified:    info.ModTime(),
		})
	}
	sort.Slice(saves, func(i, j int) bool { return saves[i].Fingerprint < saves[j].Fingerprint })
	return saves, nil
}

// GetSaveDirectory returns the directory the store writes to
func (s *NVRAMStore) GetSaveDirectory() string {
	return s.saveDirectory
}
