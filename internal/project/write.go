package project

import (
	"os"
	"path/filepath"
)

// WriteOptions controls WriteFile.
type WriteOptions struct {
	Generator string

	// BestEffort writes straight to the final path. A failure can then
	// leave a partial file behind.
	BestEffort bool
}

// WriteFile emits p to path. Unless opts.BestEffort is set the project is
// written to path+".tmp" and renamed into place, and the temporary file is
// removed on any failure, so path either holds a complete project or is
// untouched.
func WriteFile(path string, p *Project, opts WriteOptions) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	target := path
	if !opts.BestEffort {
		target = path + ".tmp"
		defer func() {
			if err != nil {
				os.Remove(target)
			}
		}()
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Emit(f, p, opts.Generator); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if opts.BestEffort {
		return nil
	}
	return os.Rename(target, path)
}
