package unlock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benfiola/depot-helper/pkg/acquire"
	"github.com/benfiola/depot-helper/pkg/app"
)

// Extension is the file extension of generated unlock scripts
const Extension = "lua"

// Renders an unlock script for the given app id, depot records and manifest bindings.
// Output is one statement per line: the app id first, then each depot's key statement
// followed by its manifest version statements.
func Render(appID string, depots []acquire.DepotRecord, bindings map[string][]string) string {
	lines := []string{fmt.Sprintf("addappid(%s)", appID)}
	for _, depot := range depots {
		lines = append(lines, fmt.Sprintf("addappid(%s,1,%q)", depot.DepotID, depot.DecryptionKey))
		for _, manifestID := range bindings[depot.DepotID] {
			lines = append(lines, fmt.Sprintf("setManifestid(%s,%q,0)", depot.DepotID, manifestID))
		}
	}
	return strings.Join(lines, "\n")
}

// Renders the unlock script and writes it as <appID>.lua into the destination directory.
// Returns the written path.
// Returns an error if the file write fails.
func WriteScript(ctx context.Context, dir string, appID string, depots []acquire.DepotRecord, bindings map[string][]string) (string, error) {
	fail := func(err error) (string, error) {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.%s", appID, Extension))
	app.Logger(ctx).Info("write unlock script", "path", path)
	err := os.WriteFile(path, []byte(Render(appID, depots, bindings)), 0644)
	if err != nil {
		return fail(err)
	}
	return path, nil
}
