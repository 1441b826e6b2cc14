package main

import (
	"fmt"
	"io/fs"
	"os"
)

func statPath(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	return info, nil
}
