package steamui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/benfiola/depot-helper/pkg/app"
)

// defaultBaseURL is the steamui search endpoint
const defaultBaseURL = "https://steamui.com"

// A Game is one candidate record returned by the search endpoint
type Game struct {
	AppID        string `json:"appid"`
	Name         string `json:"name"`
	SchineseName string `json:"schinese_name"`
}

// Returns the localized name when present, falling back to the plain name
func (g Game) DisplayName() string {
	if g.SchineseName != "" {
		return g.SchineseName
	}
	return g.Name
}

// searchResponse is the payload shape of the search endpoint
type searchResponse struct {
	Games []Game `json:"games"`
}

// A Client performs game searches against the steamui endpoint
type Client struct {
	BaseURL string
	Client  *http.Client
}

// Assembles a [Client] against the default endpoint
func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Searches for games matching the given term - either a name fragment or an app id.
// Returns an error if the request fails or the response is not JSON encoded.
func (c *Client) Search(ctx context.Context, term string) ([]Game, error) {
	fail := func(err error) ([]Game, error) {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/loadGames.php?search=%s", c.BaseURL, url.QueryEscape(term))
	app.Logger(ctx).Info("search games", "term", term)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(err)
	}

	response, err := c.Client.Do(request)
	if err != nil {
		return fail(err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("GET %s sent non-200 status code: %d", endpoint, response.StatusCode))
	}

	data := searchResponse{}
	err = json.NewDecoder(response.Body).Decode(&data)
	if err != nil {
		return fail(err)
	}
	return data.Games, nil
}
