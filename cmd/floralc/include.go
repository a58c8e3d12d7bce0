package main

import (
	"os"
	"path/filepath"
)

// fileIncluder resolves `#include "..."` against the including file's own
// directory and `#include <...>` against Root (the --stl library path),
// mirroring a conventional C-style search order (spec.md §6 "library set").
type fileIncluder struct {
	Dir  string
	Root string
}

func (f fileIncluder) Resolve(path string, angled bool) (string, string, error) {
	base := f.Dir
	if angled {
		if f.Root == "" {
			return "", "", os.ErrNotExist
		}
		base = f.Root
	}
	full := filepath.Join(base, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return "", "", err
	}
	return string(data), full, nil
}
