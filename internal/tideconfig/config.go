// Package tideconfig loads tidemark's configuration from
// <repo-root>/.tidemark.toml, following the teacher's viper-based
// root-command config loading (cmd/root.go's initConfig), adapted to a
// repo-local TOML file with defaults as the authoritative contract
// (spec.md §6.1): an absent file yields the zero-config defaults, never
// an error.
package tideconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/frgrisk/tidemark/internal/tideerr"
)

// FileName is the configuration file tidemark looks for at the repo root.
const FileName = ".tidemark.toml"

// RemoteStrategy gates whether a remote tag refresh is attempted.
type RemoteStrategy string

const (
	RemoteStrategyLsRemote  RemoteStrategy = "ls-remote"
	RemoteStrategyLocalOnly RemoteStrategy = "local-only"
)

// Config is the full tidemark configuration schema (spec.md §6.1).
type Config struct {
	Release ReleaseConfig
	Time    TimeConfig
	Remote  RemoteConfig
	Cache   CacheConfig
	Output  OutputConfig
}

type ReleaseConfig struct {
	TagPrefix            string
	RequireAnnotatedTags bool
}

type TimeConfig struct {
	Timezone string
}

type RemoteConfig struct {
	Strategy        RemoteStrategy
	Name            string
	FallbackToLocal bool
}

type CacheConfig struct {
	Enabled bool
}

type OutputConfig struct {
	MetadataSuffix *string
	FollowRenames  bool
}

// Default returns the all-defaults configuration (spec.md §6.1's Default
// column), the authoritative contract when no config file is present.
func Default() Config {
	return Config{
		Release: ReleaseConfig{TagPrefix: "v", RequireAnnotatedTags: true},
		Time:    TimeConfig{Timezone: "UTC"},
		Remote:  RemoteConfig{Strategy: RemoteStrategyLsRemote, Name: "origin", FallbackToLocal: true},
		Cache:   CacheConfig{Enabled: true},
		Output:  OutputConfig{MetadataSuffix: nil, FollowRenames: true},
	}
}

// Load reads <repoRoot>/.tidemark.toml if present, applying TIDEMARK_*
// environment overrides, and falls back to Default() when the file is
// absent. A malformed file is a ConfigParse error.
func Load(repoRoot string) (Config, error) {
	path := filepath.Join(repoRoot, FileName)

	v := viper.New()
	applyDefaults(v, Default())
	v.SetEnvPrefix("TIDEMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, tideerr.IO(path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, tideerr.ConfigParse(path, err)
	}

	return Config{
		Release: ReleaseConfig{
			TagPrefix:            v.GetString("release.tag_prefix"),
			RequireAnnotatedTags: v.GetBool("release.require_annotated_tags"),
		},
		Time: TimeConfig{
			Timezone: v.GetString("time.timezone"),
		},
		Remote: RemoteConfig{
			Strategy:        RemoteStrategy(v.GetString("remote.strategy")),
			Name:            v.GetString("remote.name"),
			FallbackToLocal: v.GetBool("remote.fallback_to_local"),
		},
		Cache: CacheConfig{
			Enabled: v.GetBool("cache.enabled"),
		},
		Output: OutputConfig{
			MetadataSuffix: nonEmptySuffix(v.GetString("output.metadata_suffix")),
			FollowRenames:  v.GetBool("output.follow_renames"),
		},
	}, nil
}

func nonEmptySuffix(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func applyDefaults(v *viper.Viper, d Config) {
	v.SetDefault("release.tag_prefix", d.Release.TagPrefix)
	v.SetDefault("release.require_annotated_tags", d.Release.RequireAnnotatedTags)
	v.SetDefault("time.timezone", d.Time.Timezone)
	v.SetDefault("remote.strategy", string(d.Remote.Strategy))
	v.SetDefault("remote.name", d.Remote.Name)
	v.SetDefault("remote.fallback_to_local", d.Remote.FallbackToLocal)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("output.metadata_suffix", "")
	v.SetDefault("output.follow_renames", d.Output.FollowRenames)
}

// Init writes the default configuration file to <repoRoot>/.tidemark.toml,
// failing with ConfigExists if one is already present.
func Init(repoRoot string) (string, error) {
	path := filepath.Join(repoRoot, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", tideerr.ConfigExists(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", tideerr.IO(path, err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTOML), 0o644); err != nil {
		return "", tideerr.IO(path, err)
	}
	return path, nil
}

// defaultConfigTOML is the exact on-disk template `config init` writes,
// kept as an explicit string (not struct-tag-derived) so a round-trip of
// init -> Load always reproduces Default() byte-for-byte in meaning.
const defaultConfigTOML = `# tidemark configuration

[release]
tag_prefix = "v"
require_annotated_tags = true

[time]
timezone = "UTC"

[remote]
strategy = "ls-remote"
name = "origin"
fallback_to_local = true

[cache]
enabled = true

[output]
# Optional suffix appended as x.y.z.<suffix>; does not change coordinates
metadata_suffix = ""
follow_renames = true
`
