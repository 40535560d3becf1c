package daemon

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/akarpinski/scrapemd"
)

// ReadRecord loads the daemon record from path.
// Returns ENOTFOUND if no record exists and EINVALID if the file is corrupt.
func ReadRecord(path string) (*scrapemd.DaemonRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, scrapemd.Errorf(scrapemd.ENOTFOUND, "no daemon record at %q", path)
	} else if err != nil {
		return nil, err
	}

	var rec scrapemd.DaemonRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, scrapemd.Errorf(scrapemd.EINVALID, "corrupt daemon record at %q: %v", path, err)
	}

	return &rec, nil
}

// WriteRecord persists the daemon record atomically (write to a temp file in
// the same directory, then rename over path).
func WriteRecord(path string, rec *scrapemd.DaemonRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// ClaimRecord atomically creates the record file with create-if-absent
// semantics and writes rec into it. This is the arbitration point for
// concurrent auto-starts: exactly one caller wins the claim.
// Returns ECONFLICT if a record already exists.
func ClaimRecord(path string, rec *scrapemd.DaemonRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return scrapemd.Errorf(scrapemd.ECONFLICT, "daemon record already claimed at %q", path)
	} else if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// RemoveRecord deletes the record file. Missing files are not an error.
func RemoveRecord(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
