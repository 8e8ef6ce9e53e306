package mirror

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benfiola/depot-helper/pkg/app"
)

// ErrUnavailable is returned when every mirror has failed for the full retry budget
var ErrUnavailable = errors.New("file unavailable on all mirrors")

// A Fetcher retrieves repository files through an ordered list of mirror url templates.
// Templates contain {repo}, {sha} and {path} placeholders.
type Fetcher struct {
	Client    *http.Client
	Retries   int
	Templates []string
}

// Assembles a [Fetcher] from the given mirror templates.
func NewFetcher(templates []string, retries int, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		Retries:   retries,
		Templates: templates,
	}
}

// Expands a mirror url template with the given repository, revision and path
func expand(template string, repo string, sha string, path string) string {
	return strings.NewReplacer("{repo}", repo, "{sha}", sha, "{path}", path).Replace(template)
}

// Performs a single GET against the given url.
// Returns an error on transport failure or a non-200 status code.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	fail := func(err error) ([]byte, error) {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(err)
	}

	response, err := f.Client.Do(request)
	if err != nil {
		return fail(err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fail(errors.New(response.Status))
	}

	return io.ReadAll(response.Body)
}

// Fetches a file at the given repository revision, trying each mirror in order.
// The first mirror responding with a 200 wins.  A full pass over all mirrors without a
// success consumes one retry; exhausting the retry budget returns [ErrUnavailable].
// Context cancellation propagates immediately.
func (f *Fetcher) Fetch(ctx context.Context, repo string, sha string, path string) ([]byte, error) {
	fail := func(err error) ([]byte, error) {
		return nil, err
	}

	for attempt := f.Retries; attempt > 0; attempt-- {
		for _, template := range f.Templates {
			if ctx.Err() != nil {
				return fail(ctx.Err())
			}

			url := expand(template, repo, sha, path)
			data, err := f.get(ctx, url)
			if err == nil {
				return data, nil
			}
			if ctx.Err() != nil {
				return fail(ctx.Err())
			}
			app.Logger(ctx).Warn("mirror fetch failed", "path", path, "url", url, "error", err.Error())
		}
		app.Logger(ctx).Warn("retries remaining", "path", path, "count", attempt-1)
	}

	app.Logger(ctx).Error("retries exhausted", "path", path)
	return fail(ErrUnavailable)
}
