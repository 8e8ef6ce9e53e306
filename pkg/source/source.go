package source

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benfiola/depot-helper/pkg/app"
	"github.com/google/go-github/v68/github"
)

// ErrNotFound is returned when an app id does not resolve to a branch in a repository
var ErrNotFound = errors.New("app id not found in repository")

// A Revision is an immutable pointer to one commit within a repository
type Revision struct {
	Date    time.Time
	Repo    string
	SHA     string
	TreeSHA string
}

// A TreeEntry is a relative file path within a revision
type TreeEntry struct {
	Path string
}

// A Source resolves app ids to revisions within one upstream repository
type Source interface {
	Resolve(ctx context.Context, appID string) (Revision, error)
	ListTree(ctx context.Context, rev Revision) ([]TreeEntry, error)
}

// A GithubSource resolves app ids against branches of a single github repository
type GithubSource struct {
	Client *github.Client
	Repo   string
}

// Splits an 'owner/name' repository string into its parts
func (s *GithubSource) split() (string, string) {
	owner, name, _ := strings.Cut(s.Repo, "/")
	return owner, name
}

// Resolves an app id to the head revision of the branch with the same name.
// Returns [ErrNotFound] if the branch does not exist.
// Returns an error if the github api request fails.
func (s *GithubSource) Resolve(ctx context.Context, appID string) (Revision, error) {
	fail := func(err error) (Revision, error) {
		return Revision{}, err
	}

	app.Logger(ctx).Info("resolve branch", "repo", s.Repo, "branch", appID)
	owner, name := s.split()
	branch, _, err := s.Client.Repositories.GetBranch(ctx, owner, name, appID, 0)
	if err != nil {
		var gerr *github.ErrorResponse
		if errors.As(err, &gerr) && gerr.Response != nil && gerr.Response.StatusCode == http.StatusNotFound {
			return fail(ErrNotFound)
		}
		return fail(err)
	}

	commit := branch.GetCommit()
	return Revision{
		Date:    commit.GetCommit().GetAuthor().GetDate().Time,
		Repo:    s.Repo,
		SHA:     commit.GetSHA(),
		TreeSHA: commit.GetCommit().GetTree().GetSHA(),
	}, nil
}

// Lists the file paths at the given revision.  The upstream layout is flat, so the
// tree is fetched non-recursively.
// Returns [ErrNotFound] if the tree does not exist.
// Returns an error if the github api request fails.
func (s *GithubSource) ListTree(ctx context.Context, rev Revision) ([]TreeEntry, error) {
	fail := func(err error) ([]TreeEntry, error) {
		return nil, err
	}

	owner, name := s.split()
	tree, _, err := s.Client.Git.GetTree(ctx, owner, name, rev.TreeSHA, false)
	if err != nil {
		var gerr *github.ErrorResponse
		if errors.As(err, &gerr) && gerr.Response != nil && gerr.Response.StatusCode == http.StatusNotFound {
			return fail(ErrNotFound)
		}
		return fail(err)
	}

	entries := []TreeEntry{}
	for _, entry := range tree.Entries {
		entries = append(entries, TreeEntry{Path: entry.GetPath()})
	}
	return entries, nil
}

// A Registry holds the ordered list of candidate sources for an acquisition run
type Registry struct {
	Sources []Source
}

// Assembles a [Registry] of github sources from an ordered repository list.
// An auth token is optional - when set, requests are authenticated with it.
func NewRegistry(repos []string, token string) *Registry {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	sources := []Source{}
	for _, repo := range repos {
		sources = append(sources, &GithubSource{Client: client, Repo: repo})
	}
	return &Registry{Sources: sources}
}
