package acquire

import (
	"context"
	"strings"

	"github.com/benfiola/depot-helper/pkg/app"
)

// Extracts the manifest version tokens for one depot from a list of file names.
// Matching names have the form <depotID>_<manifestID>.manifest; tokens are returned
// in listing order.
func BindNames(depotID string, names []string) []string {
	prefix := depotID + "_"
	tokens := []string{}
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, manifestSuffix) {
			continue
		}
		tokens = append(tokens, name[len(prefix):len(name)-len(manifestSuffix)])
	}
	return tokens
}

// Scans the destination directory and groups manifest version tokens per depot record.
// Returns an error if the directory cannot be listed.
func BindAll(ctx context.Context, dir string, depots []DepotRecord) (app.Map[string, []string], error) {
	fail := func(err error) (app.Map[string, []string], error) {
		return nil, err
	}

	names, err := app.ListDir(ctx, dir)
	if err != nil {
		return fail(err)
	}

	bindings := app.Map[string, []string]{}
	for _, depot := range depots {
		bindings[depot.DepotID] = BindNames(depot.DepotID, names)
	}
	return bindings, nil
}
