package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/benfiola/depot-helper/pkg/app"
	"github.com/benfiola/depot-helper/pkg/keyfile"
	"github.com/benfiola/depot-helper/pkg/mirror"
	"github.com/benfiola/depot-helper/pkg/source"
)

// ErrNotFound is returned when no configured source yields depot records for an app id
var ErrNotFound = errors.New("no depots found for app id")

// keyFileNames are the accepted key file variants, interchangeable with one another
var keyFileNames = []string{"Key.vdf", "key.vdf", "config.vdf"}

// manifestSuffix marks tree entries holding a depot manifest
const manifestSuffix = ".manifest"

// A DepotRecord pairs a depot id with its decryption key
type DepotRecord struct {
	DepotID       string
	DecryptionKey string
}

// A Result aggregates the depot records collected during one acquisition run
type Result struct {
	AppID  string
	Depots []DepotRecord
	Dir    string
	Name   string
}

// A Pipeline acquires depot keys and manifest files for a single app id
type Pipeline struct {
	BaseDir  string
	Fetcher  *mirror.Fetcher
	Registry *source.Registry
	Workers  int
}

// Normalizes a raw app id token to its first all-decimal segment.
// Returns an error if the token contains no decimal segment.
func NormalizeAppID(raw string) (string, error) {
	for _, part := range strings.Split(strings.TrimSpace(raw), "-") {
		if part == "" {
			continue
		}
		if strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			return part, nil
		}
	}
	return "", fmt.Errorf("no numeric app id in %q", raw)
}

// Returns the destination directory name for the given app id and display name
func destDirName(appID string, name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return fmt.Sprintf("[%s]%s", appID, name)
}

// Returns a boolean indicating whether the tree entry is a key file
func isKeyFile(path string) bool {
	for _, name := range keyFileNames {
		if path == name {
			return true
		}
	}
	return false
}

// Runs the acquisition for the given app id, trying each configured source in order.
// The first source yielding at least one depot record wins.
// Returns [ErrNotFound] if every source is exhausted without depot records.
// Returns an error if an unexpected failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, appID string, name string) (Result, error) {
	fail := func(err error) (Result, error) {
		return Result{}, err
	}

	appID, err := NormalizeAppID(appID)
	if err != nil {
		return fail(err)
	}

	dir := filepath.Join(p.BaseDir, destDirName(appID, name))
	err = app.CreateDirs(ctx, dir)
	if err != nil {
		return fail(err)
	}

	for _, src := range p.Registry.Sources {
		depots, err := p.runSource(ctx, src, appID, dir)
		if errors.Is(err, source.ErrNotFound) {
			app.Logger(ctx).Warn("app id not found in source, trying next", "app", appID)
			continue
		}
		if err != nil {
			return fail(err)
		}
		if len(depots) == 0 {
			app.Logger(ctx).Warn("source yielded no depots, trying next", "app", appID)
			continue
		}
		return Result{AppID: appID, Depots: depots, Dir: dir, Name: name}, nil
	}

	app.Logger(ctx).Error("app id not found in any source", "app", appID)
	return Result{AppID: appID, Dir: dir, Name: name}, ErrNotFound
}

// Runs the key and manifest phases against one source.
// Returns [source.ErrNotFound] if the source does not resolve the app id or its tree is empty.
func (p *Pipeline) runSource(ctx context.Context, src source.Source, appID string, dir string) ([]DepotRecord, error) {
	fail := func(err error) ([]DepotRecord, error) {
		return nil, err
	}

	rev, err := src.Resolve(ctx, appID)
	if err != nil {
		return fail(err)
	}

	entries, err := src.ListTree(ctx, rev)
	if err != nil {
		return fail(err)
	}
	if len(entries) == 0 {
		return fail(source.ErrNotFound)
	}

	depots, err := p.keyPhase(ctx, rev, entries)
	if err != nil {
		return fail(err)
	}

	err = p.manifestPhase(ctx, rev, entries, dir)
	if err != nil {
		return fail(err)
	}

	if len(depots) > 0 {
		app.Logger(ctx).Info("manifests last updated", "date", rev.Date)
		app.Logger(ctx).Info("app id resolved", "app", appID, "repo", rev.Repo)
	}
	return depots, nil
}

// Fetches and parses key file candidates in tree order until one yields depot records.
// Fetch and parse failures advance to the next candidate; producing no records is not fatal.
// Context cancellation propagates immediately.
func (p *Pipeline) keyPhase(ctx context.Context, rev source.Revision, entries []source.TreeEntry) ([]DepotRecord, error) {
	for _, entry := range entries {
		if !isKeyFile(entry.Path) {
			continue
		}

		data, err := p.Fetcher.Fetch(ctx, rev.Repo, rev.SHA, entry.Path)
		if errors.Is(err, mirror.ErrUnavailable) {
			continue
		}
		if err != nil {
			return nil, err
		}
		app.Logger(ctx).Info("key file downloaded", "path", entry.Path)

		keys, err := keyfile.Parse(data)
		if err != nil {
			app.Logger(ctx).Error("key file unparseable", "path", entry.Path, "error", err.Error())
			continue
		}
		if len(keys) == 0 {
			continue
		}

		depots := []DepotRecord{}
		for _, key := range keys {
			depots = append(depots, DepotRecord{DepotID: key.DepotID, DecryptionKey: key.DecryptionKey})
		}
		return depots, nil
	}
	return nil, nil
}

// Fetches every manifest entry through a bounded worker pool and persists each verbatim.
// Manifests already present at the destination are skipped.  A manifest unavailable on
// all mirrors is logged and skipped; any other failure aborts the phase.
func (p *Pipeline) manifestPhase(ctx context.Context, rev source.Revision, entries []source.TreeEntry, dir string) error {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var group sync.WaitGroup
	var mu sync.Mutex
	var fatal error
	for i := 0; i < workers; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			for path := range jobs {
				err := p.fetchManifest(ctx, rev, path, dir)
				if err != nil {
					mu.Lock()
					if fatal == nil {
						fatal = err
					}
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Path, manifestSuffix) {
			continue
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- entry.Path:
		}
	}
	close(jobs)
	group.Wait()

	if fatal != nil {
		return fatal
	}
	return ctx.Err()
}

// Fetches a single manifest file and writes it to the destination directory.
// Is a no-op if the file already exists.
func (p *Pipeline) fetchManifest(ctx context.Context, rev source.Revision, path string, dir string) error {
	dest := filepath.Join(dir, path)
	_, err := os.Stat(dest)
	if err == nil {
		app.Logger(ctx).Warn("manifest already exists", "path", path)
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := p.Fetcher.Fetch(ctx, rev.Repo, rev.SHA, path)
	if errors.Is(err, mirror.ErrUnavailable) {
		return nil
	}
	if err != nil {
		return err
	}

	app.Logger(ctx).Info("manifest downloaded", "path", path)
	return os.WriteFile(dest, data, 0644)
}
