package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/benfiola/depot-helper/pkg/acquire"
	"github.com/benfiola/depot-helper/pkg/app"
	"github.com/benfiola/depot-helper/pkg/mirror"
	"github.com/benfiola/depot-helper/pkg/source"
	"github.com/benfiola/depot-helper/pkg/steamui"
	"github.com/benfiola/depot-helper/pkg/unlock"
	"github.com/google/uuid"
)

// Prompts the user for a line of input and returns it trimmed
func prompt(reader *bufio.Reader, message string) (string, error) {
	fmt.Print(message)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Returns a boolean indicating whether the token is composed only of decimal digits
func isDecimal(token string) bool {
	if token == "" {
		return false
	}
	return strings.IndexFunc(token, func(r rune) bool { return r < '0' || r > '9' }) == -1
}

// Resolves the user input to an (app id, display name) pair.
// Numeric input is used as-is, with a best-effort name lookup.
// Free text runs a search and presents a numbered selection menu.
// Returns empty values when the search yields no candidates.
func selectGame(ctx context.Context, search *steamui.Client, reader *bufio.Reader, input string) (string, string, error) {
	fail := func(err error) (string, string, error) {
		return "", "", err
	}

	if isDecimal(input) {
		name := ""
		games, err := search.Search(ctx, input)
		if err != nil {
			app.Logger(ctx).Warn("name lookup failed", "app", input, "error", err.Error())
		}
		if len(games) > 0 {
			name = games[0].DisplayName()
		}
		return input, name, nil
	}

	games, err := search.Search(ctx, input)
	if err != nil {
		app.Logger(ctx).Warn("search failed", "term", input, "error", err.Error())
	}
	if len(games) == 0 {
		return "", "", nil
	}

	fmt.Println("Matching games:")
	for index, game := range games {
		fmt.Printf("%d. %s (AppID: %s)\n", index+1, game.DisplayName(), game.AppID)
	}

	choice, err := prompt(reader, "Select a game number: ")
	if err != nil {
		return fail(err)
	}
	index, err := strconv.Atoi(choice)
	if err != nil || index < 1 || index > len(games) {
		return "", "", nil
	}

	game := games[index-1]
	app.Logger(ctx).Info("game selected", "name", game.DisplayName(), "app", game.AppID)
	return game.AppID, game.DisplayName(), nil
}

// Runs the acquisition flow end to end.
// Returns an error on unexpected failure; unresolved app ids report a plain message.
func run(ctx context.Context) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := prompt(reader, "Enter an app id or game name: ")
	if err != nil {
		return err
	}

	appID, name, err := selectGame(ctx, steamui.NewClient(), reader, input)
	if err != nil {
		return err
	}
	if appID == "" {
		fmt.Println("No matching game found. Try another name.")
		return nil
	}

	pipeline := &acquire.Pipeline{
		Fetcher:  mirror.NewFetcher(cfg.Mirrors, cfg.RetryBudget, cfg.RequestTimeout),
		Registry: source.NewRegistry(cfg.Repositories, cfg.GithubToken),
		Workers:  cfg.Workers,
	}

	result, err := pipeline.Run(ctx, appID, name)
	if errors.Is(err, acquire.ErrNotFound) {
		fmt.Printf("No depots found for app id %s.\n", appID)
		return nil
	}
	if err != nil {
		return err
	}

	bindings, err := acquire.BindAll(ctx, result.Dir, result.Depots)
	if err != nil {
		return err
	}

	_, err = unlock.WriteScript(ctx, result.Dir, result.AppID, result.Depots, bindings)
	if err != nil {
		return err
	}

	display := result.Name
	if display == "" {
		display = result.AppID
	}
	app.Logger(ctx).Info("unlock script generated", "app", result.AppID, "depots", len(bindings.Keys()))
	fmt.Printf("Generated unlock files for %s.\n", display)
	fmt.Printf("Drag the contents of %s onto the steamtools overlay, then restart steam to play %s.\n", result.Dir, display)
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{}))
	logger = logger.With("run", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = app.WithLogger(ctx, logger)

	err := run(ctx)

	code := 0
	if err != nil {
		code = 1
		logger.Error("depot helper failed", "error", err.Error())
	}

	os.Exit(code)
}
