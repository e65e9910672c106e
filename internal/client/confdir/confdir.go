// Package confdir manages the CLI's config directory: a pointer file to the
// daemon data directory and a stable device identifier.
package confdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var fs = afero.NewOsFs()

const (
	dataDirFile  = "datadir"
	deviceIDFile = "device_id"

	legacyDataDirFile  = "seafile.ini"
	legacyDeviceIDFile = "ID"

	defaultDataDirName = "data"
)

var (
	ErrNotInitialized = errors.New("config directory not initialized, run init first")
	ErrNoDataDir      = errors.New("data directory not recorded in config directory")
)

type Dir struct {
	Path string
}

// Open returns the config directory at path. It must exist.
func Open(path string) (*Dir, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotInitialized)
		}
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}
	return &Dir{Path: path}, nil
}

// Init creates the config directory and the data directory and records
// the latter. An empty dataDir means "data" inside the config directory.
// Init refuses to overwrite an existing pointer to another data directory.
func Init(path, dataDir string) (*Dir, error) {
	if dataDir == "" {
		dataDir = filepath.Join(path, defaultDataDirName)
	}
	if err := fs.MkdirAll(path, 0o700); err != nil {
		return nil, err
	}
	d := &Dir{Path: path}

	existing, err := d.DataDir()
	switch {
	case err == nil && existing != dataDir:
		return nil, fmt.Errorf("%s already points to data directory %s", path, existing)
	case err != nil && !errors.Is(err, ErrNoDataDir):
		return nil, err
	}

	if err := fs.MkdirAll(dataDir, 0o700); err != nil {
		return nil, err
	}
	if err := d.write(dataDirFile, dataDir); err != nil {
		return nil, err
	}
	if _, err := d.DeviceID(); err != nil {
		return nil, err
	}
	return d, nil
}

// DataDir returns the recorded data directory. A legacy pointer file is
// migrated on first use.
func (d *Dir) DataDir() (string, error) {
	v, err := d.readMigrating(dataDirFile, legacyDataDirFile)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNoDataDir
	}
	return v, nil
}

// DeviceID returns the per-installation identifier, migrating a legacy
// one or generating a new one when none exists.
func (d *Dir) DeviceID() (string, error) {
	v, err := d.readMigrating(deviceIDFile, legacyDeviceIDFile)
	if err != nil {
		return "", err
	}
	if v != "" {
		return v, nil
	}
	id := uuid.NewString()
	if err := d.write(deviceIDFile, id); err != nil {
		return "", err
	}
	return id, nil
}

// readMigrating reads name, falling back to legacy and copying its value
// to name. Missing files yield "".
func (d *Dir) readMigrating(name, legacy string) (string, error) {
	v, err := d.read(name)
	if err != nil || v != "" {
		return v, err
	}
	v, err = d.read(legacy)
	if err != nil || v == "" {
		return "", err
	}
	if err := d.write(name, v); err != nil {
		return "", err
	}
	return v, nil
}

func (d *Dir) read(name string) (string, error) {
	data, err := afero.ReadFile(fs, filepath.Join(d.Path, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (d *Dir) write(name, value string) error {
	return afero.WriteFile(fs, filepath.Join(d.Path, name), []byte(value+"\n"), 0o600)
}
