package app

import (
	"encoding/json"
	"time"

	"github.com/caarlos0/env/v11"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Config holds the settings shared by the acquisition pipeline components.
// Fields are populated from defaults, then the environment, then an optional JSON patch.
type Config struct {
	GithubToken    string        `env:"GITHUB_TOKEN" json:"-"`
	Mirrors        []string      `env:"MIRRORS" envSeparator:"," json:"mirrors"`
	Patches        string        `env:"CONFIG_PATCHES" json:"-"`
	Repositories   []string      `env:"REPOSITORIES" envSeparator:"," json:"repositories"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s" json:"requestTimeout"`
	RetryBudget    int           `env:"RETRY_BUDGET" envDefault:"3" json:"retryBudget"`
	Workers        int           `env:"WORKERS" envDefault:"4" json:"workers"`
}

// Returns a [Config] holding the built-in repository and mirror lists
func DefaultConfig() Config {
	return Config{
		Mirrors: []string{
			"https://jsdelivr.pai233.top/gh/{repo}@{sha}/{path}",
			"https://cdn.jsdmirror.com/gh/{repo}@{sha}/{path}",
			"https://raw.gitmirror.com/{repo}/{sha}/{path}",
			"https://raw.dgithub.xyz/{repo}/{sha}/{path}",
			"https://gh.akass.cn/{repo}/{sha}/{path}",
		},
		Repositories: []string{
			"SteamAutoCracks/ManifestHub",
			"ikun0014/ManifestHub",
			"Auiowu/ManifestAutoUpdate",
			"tymolu233/ManifestAutoUpdate-fix",
		},
	}
}

// Applies an RFC6902 compliant JSON patch to the config, in place.
// Returns an error if the patch operation fails.
func (c *Config) applyPatches(raw string) error {
	patch, err := jsonpatch.DecodePatch([]byte(raw))
	if err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	data, err = patch.ApplyIndent(data, "  ")
	if err != nil {
		return err
	}

	return json.Unmarshal(data, c)
}

// Loads the config - applying defaults, environment variables and config patches in order.
// Returns an error if parsing the environment variables fail.
// Returns an error if the config patch fails to apply.
func LoadConfig() (Config, error) {
	fail := func(err error) (Config, error) {
		return Config{}, err
	}

	cfg := DefaultConfig()
	err := env.Parse(&cfg)
	if err != nil {
		return fail(err)
	}

	if cfg.Patches != "" {
		err = cfg.applyPatches(cfg.Patches)
		if err != nil {
			return fail(err)
		}
	}

	return cfg, nil
}
