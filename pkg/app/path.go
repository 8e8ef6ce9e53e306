package app

import (
	"context"
	"errors"
	"os"
)

// Creates the provided directories
// Returns an error if any directories fail to create
func CreateDirs(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			Logger(ctx).Info("create directory", "path", path)
			err = os.MkdirAll(path, 0755)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Lists the names of the entries in the given directory
// Returns an error if the path is not a directory
func ListDir(ctx context.Context, path string) ([]string, error) {
	fail := func(err error) ([]string, error) {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fail(err)
	}
	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}
