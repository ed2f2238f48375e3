package configure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func checkErr(err error) {
	if err != nil {
		zap.S().Fatalw("config",
			"error", err,
		)
	}
}

func New() *Config {
	initLogging("info")

	config := viper.New()

	// Default config
	b, _ := json.Marshal(Defaults())
	tmp := viper.New()
	defaultConfig := bytes.NewReader(b)

	tmp.SetConfigType("json")
	checkErr(tmp.ReadConfig(defaultConfig))
	checkErr(config.MergeConfigMap(tmp.AllSettings()))

	pflag.String("config", "config.yaml", "Config file location")
	pflag.Bool("noheader", false, "Disable the startup header")

	pflag.Parse()
	checkErr(config.BindPFlags(pflag.CommandLine))

	// File
	config.SetConfigFile(config.GetString("config"))
	config.AddConfigPath(".")

	if err := config.ReadInConfig(); err == nil {
		checkErr(config.MergeInConfig())
	}

	bindEnvs(config, Config{})

	// Environment
	config.AutomaticEnv()
	config.SetEnvPrefix("API")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AllowEmptyEnv(true)

	c := &Config{}
	checkErr(config.Unmarshal(&c))

	initLogging(c.Level)

	checkErr(c.Validate())

	return c
}

func bindEnvs(config *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)

	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)

		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}

		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(config, v.Interface(), append(parts, tv)...)
		default:
			_ = config.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

// Defaults returns the configuration used when nothing overrides a key
func Defaults() Config {
	c := Config{
		Level:      "info",
		ConfigFile: "config.yaml",
		UserAgent:  "nxyy crawler (https://nxyy.space/)",
	}

	c.Http.Addr = "0.0.0.0"
	c.Http.Ports.REST = 3000

	c.Health.Bind = "0.0.0.0:9000"
	c.Monitoring.Bind = "0.0.0.0:9100"
	c.PProf.Bind = "127.0.0.1:6060"

	c.Presence.Enabled = true
	c.Presence.GatewayURL = "wss://api.lanyard.rest/socket"
	c.Presence.RestURL = "https://api.lanyard.rest/v1"
	c.Presence.ReconnectDelayMs = 5000
	c.Presence.WriteTimeoutMs = 10000
	c.Presence.FetchTimeoutMs = 10000
	c.Presence.EventBuffer = 64
	c.Presence.UserIDs = []string{
		"1137513168965476352",
		"442626774841556992",
		"790956973478641703",
	}

	c.Palette.CacheSize = 512
	c.Palette.MaxColors = 12
	c.Palette.Quality = 10
	c.Palette.FetchTimeoutMs = 10000
	c.Palette.MaxImageBytes = 8 * 1024 * 1024
	c.Palette.FallbackColor = [3]uint8{64, 128, 255}
	c.Palette.AllowedHosts = []string{
		"cdn.discordapp.com",
		"media.discordapp.net",
		"i.scdn.co",
	}

	c.Upstreams = []Upstream{
		{
			Name:            "egirls",
			URL:             "https://api.e-girls.host/stats",
			ErrorMessage:    "Failed to fetch e-girls.host stats",
			CacheTTLSeconds: 30,
			StatusFormat:    "Failed to fetch: {text}",
		},
		{
			Name:            "warm",
			URL:             "https://api.warm.lat/bot/status",
			ErrorMessage:    "Failed to fetch warm.lat stats",
			CacheTTLSeconds: 30,
			StatusFormat:    "HTTP error! status: {code}",
		},
	}

	return c
}

type Config struct {
	Level      string `mapstructure:"level" json:"level"`
	ConfigFile string `mapstructure:"config" json:"config"`
	NoHeader   bool   `mapstructure:"noheader" json:"noheader"`
	UserAgent  string `mapstructure:"user_agent" json:"user_agent"`

	K8S struct {
		NodeName string `mapstructure:"node_name" json:"node_name"`
		PodName  string `mapstructure:"pod_name" json:"pod_name"`
	} `mapstructure:"k8s" json:"k8s"`

	Health struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Bind    string `mapstructure:"bind" json:"bind"`
	} `mapstructure:"health" json:"health"`

	PProf struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Bind    string `mapstructure:"bind" json:"bind"`
	} `mapstructure:"pprof" json:"pprof"`

	Monitoring struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Bind    string `mapstructure:"bind" json:"bind"`
		Labels  Labels `mapstructure:"labels" json:"labels"`
	} `mapstructure:"monitoring" json:"monitoring"`

	Http struct {
		Addr          string `mapstructure:"addr" json:"addr"`
		VersionSuffix string `mapstructure:"version_suffix" json:"version_suffix"`
		Ports         struct {
			REST int `mapstructure:"rest" json:"rest"`
		} `mapstructure:"ports" json:"ports"`

		CorsWhitelist []string `mapstructure:"cors_whitelist" json:"cors_whitelist"`
	} `mapstructure:"http" json:"http"`

	Presence struct {
		Enabled          bool     `mapstructure:"enabled" json:"enabled"`
		GatewayURL       string   `mapstructure:"gateway_url" json:"gateway_url"`
		RestURL          string   `mapstructure:"rest_url" json:"rest_url"`
		UserIDs          []string `mapstructure:"user_ids" json:"user_ids"`
		ReconnectDelayMs int      `mapstructure:"reconnect_delay_ms" json:"reconnect_delay_ms"`
		WriteTimeoutMs   int      `mapstructure:"write_timeout_ms" json:"write_timeout_ms"`
		FetchTimeoutMs   int      `mapstructure:"fetch_timeout_ms" json:"fetch_timeout_ms"`
		EventBuffer      int      `mapstructure:"event_buffer" json:"event_buffer"`
	} `mapstructure:"presence" json:"presence"`

	Palette struct {
		CacheSize      int      `mapstructure:"cache_size" json:"cache_size"`
		MaxColors      int      `mapstructure:"max_colors" json:"max_colors"`
		Quality        int      `mapstructure:"quality" json:"quality"`
		FetchTimeoutMs int      `mapstructure:"fetch_timeout_ms" json:"fetch_timeout_ms"`
		MaxImageBytes  int      `mapstructure:"max_image_bytes" json:"max_image_bytes"`
		FallbackColor  [3]uint8 `mapstructure:"fallback_color" json:"fallback_color"`
		AllowedHosts   []string `mapstructure:"allowed_hosts" json:"allowed_hosts"`
	} `mapstructure:"palette" json:"palette"`

	Upstreams []Upstream `mapstructure:"upstreams" json:"upstreams"`
}

type Upstream struct {
	Name            string `mapstructure:"name" json:"name"`
	URL             string `mapstructure:"url" json:"url"`
	ErrorMessage    string `mapstructure:"error_message" json:"error_message"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" json:"cache_ttl_seconds"`
	StatusFormat    string `mapstructure:"status_format" json:"status_format"`
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var err error

	if c.Presence.Enabled {
		if e := validURL(c.Presence.GatewayURL, "ws", "wss"); e != nil {
			err = multierror.Append(err, fmt.Errorf("presence.gateway_url: %w", e))
		}

		if e := validURL(c.Presence.RestURL, "http", "https"); e != nil {
			err = multierror.Append(err, fmt.Errorf("presence.rest_url: %w", e))
		}

		if c.Presence.ReconnectDelayMs <= 0 {
			err = multierror.Append(err, fmt.Errorf("presence.reconnect_delay_ms must be positive"))
		}
	}

	if c.Palette.CacheSize <= 0 {
		err = multierror.Append(err, fmt.Errorf("palette.cache_size must be positive"))
	}

	if c.Palette.MaxColors < 2 || c.Palette.MaxColors > 256 {
		err = multierror.Append(err, fmt.Errorf("palette.max_colors must be between 2 and 256"))
	}

	if c.Palette.Quality < 1 {
		err = multierror.Append(err, fmt.Errorf("palette.quality must be at least 1"))
	}

	seen := map[string]bool{}

	for i, u := range c.Upstreams {
		if u.Name == "" {
			err = multierror.Append(err, fmt.Errorf("upstreams[%d].name is required", i))
		} else if seen[u.Name] {
			err = multierror.Append(err, fmt.Errorf("upstreams[%d].name %q is duplicated", i, u.Name))
		}

		seen[u.Name] = true

		if e := validURL(u.URL, "http", "https"); e != nil {
			err = multierror.Append(err, fmt.Errorf("upstreams[%d].url: %w", i, e))
		}
	}

	return err
}

func validURL(s string, schemes ...string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}

	for _, scheme := range schemes {
		if u.Scheme == scheme && u.Host != "" {
			return nil
		}
	}

	return fmt.Errorf("%q is not a %s url", s, schemes[len(schemes)-1])
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (c *Config) ReconnectDelay() time.Duration {
	return ms(c.Presence.ReconnectDelayMs)
}

func (c *Config) PresenceWriteTimeout() time.Duration {
	return ms(c.Presence.WriteTimeoutMs)
}

func (c *Config) PresenceFetchTimeout() time.Duration {
	return ms(c.Presence.FetchTimeoutMs)
}

func (c *Config) PaletteFetchTimeout() time.Duration {
	return ms(c.Palette.FetchTimeoutMs)
}

type Labels []struct {
	Key   string `mapstructure:"key" json:"key"`
	Value string `mapstructure:"value" json:"value"`
}

func (l Labels) ToPrometheus() prometheus.Labels {
	mp := prometheus.Labels{}

	for _, v := range l {
		mp[v.Key] = v.Value
	}

	return mp
}
