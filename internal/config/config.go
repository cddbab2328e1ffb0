// Package config loads tmplsync settings.
//
// Settings come from built-in defaults, an optional YAML file and TMPLSYNC_*
// environment variables, in increasing order of precedence. The file is read
// from $TMPLSYNC_CONFIG when set, otherwise from
// $XDG_CONFIG_HOME/tmplsync/config.yaml.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TMPLSYNC"

	// ConfigFileEnv names an explicit config file.
	ConfigFileEnv = "TMPLSYNC_CONFIG"

	defaultBaseURL      = "https://api.github.com/repos/ThreatConnect-Inc/tcex-app-templates"
	defaultBranch       = "v2"
	defaultManifestName = "manifest.json"
)

// Proxy holds optional proxy settings for template downloads.
type Proxy struct {
	Host string
	Port int
	User string
	Pass string
}

// Settings is the resolved configuration.
type Settings struct {
	// BaseURL is the API root of the template repository
	BaseURL string

	// Branch is the template branch to download
	Branch string

	// ManifestName is the manifest file name in template and project
	ManifestName string

	// Token is sent as a bearer token when set
	Token string

	Proxy Proxy

	// File is the config file that was read, empty if none
	File string
}

// DefaultConfigFile returns the config file location.
func DefaultConfigFile() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}
	return filepath.Join(xdg.ConfigHome, "tmplsync", "config.yaml")
}

// Load resolves settings. An empty configFile means DefaultConfigFile. A
// missing file is not an error; an unreadable or malformed one is.
func Load(configFile string) (*Settings, error) {
	if configFile == "" {
		configFile = DefaultConfigFile()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("base_url", defaultBaseURL)
	v.SetDefault("branch", defaultBranch)
	v.SetDefault("manifest_name", defaultManifestName)
	v.SetDefault("token", "")
	v.SetDefault("proxy.host", "")
	v.SetDefault("proxy.port", 0)
	v.SetDefault("proxy.user", "")
	v.SetDefault("proxy.pass", "")

	// TMPLSYNC_BASE_URL, TMPLSYNC_PROXY_HOST, ...
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	settings := &Settings{}

	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		settings.File = configFile
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configFile, err)
	}

	settings.BaseURL = v.GetString("base_url")
	settings.Branch = v.GetString("branch")
	settings.ManifestName = v.GetString("manifest_name")
	settings.Token = v.GetString("token")
	settings.Proxy = Proxy{
		Host: v.GetString("proxy.host"),
		Port: v.GetInt("proxy.port"),
		User: v.GetString("proxy.user"),
		Pass: v.GetString("proxy.pass"),
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if s.Branch == "" {
		return fmt.Errorf("branch must not be empty")
	}
	if s.ManifestName == "" || strings.ContainsAny(s.ManifestName, `/\`) {
		return fmt.Errorf("invalid manifest_name %q", s.ManifestName)
	}
	if s.Proxy.Port < 0 || s.Proxy.Port > 65535 {
		return fmt.Errorf("invalid proxy port %d", s.Proxy.Port)
	}
	if s.Proxy.Host != "" && s.Proxy.Port == 0 {
		return fmt.Errorf("proxy host %q requires a proxy port", s.Proxy.Host)
	}
	if s.Proxy.Host == "" && (s.Proxy.Port != 0 || s.Proxy.User != "" || s.Proxy.Pass != "") {
		return fmt.Errorf("proxy port and credentials require a proxy host")
	}
	if s.Proxy.Pass != "" && s.Proxy.User == "" {
		return fmt.Errorf("proxy password requires a proxy user")
	}
	return nil
}

// ProxyURL returns the configured proxy for downloads, or "" when no proxy
// host and port are set. An empty result leaves the choice to the
// https_proxy and no_proxy environment variables.
func (s *Settings) ProxyURL() string {
	if s.Proxy.Host == "" || s.Proxy.Port == 0 {
		return ""
	}
	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(s.Proxy.Host, strconv.Itoa(s.Proxy.Port)),
	}
	switch {
	case s.Proxy.User != "" && s.Proxy.Pass != "":
		u.User = url.UserPassword(s.Proxy.User, s.Proxy.Pass)
	case s.Proxy.User != "":
		u.User = url.User(s.Proxy.User)
	}
	return u.String()
}
