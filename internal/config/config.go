// Package config loads the application configuration from config.yaml and the
// environment and validates it per run mode.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Tiers      TiersConfig      `yaml:"tiers" mapstructure:"tiers"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Outreach   OutreachConfig   `yaml:"outreach" mapstructure:"outreach"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourceConfig locates and describes the lead roster.
type SourceConfig struct {
	Location  string `yaml:"location" mapstructure:"location"`
	Format    string `yaml:"format" mapstructure:"format"`
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	Charset   string `yaml:"charset" mapstructure:"charset"`
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`
}

// DelimiterRune returns the configured CSV delimiter as a rune, or 0 when
// unset (the parser then defaults to comma).
func (c SourceConfig) DelimiterRune() rune {
	if c.Delimiter == "" {
		return 0
	}
	return []rune(c.Delimiter)[0]
}

// TiersConfig overrides the shipped territory plan. File, when set, wins over
// the inline state lists.
type TiersConfig struct {
	Tier1States []string `yaml:"tier1_states" mapstructure:"tier1_states"`
	Tier2States []string `yaml:"tier2_states" mapstructure:"tier2_states"`
	File        string   `yaml:"file" mapstructure:"file"`
}

// Table resolves the configured tier assignment table.
func (c TiersConfig) Table() (model.TierTable, error) {
	if c.File != "" {
		return model.LoadTierTable(c.File)
	}
	if len(c.Tier1States) > 0 || len(c.Tier2States) > 0 {
		return model.NewTierTable(c.Tier1States, c.Tier2States)
	}
	return model.DefaultTierTable(), nil
}

// StoreConfig configures the snapshot store backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	Path        string            `yaml:"path" mapstructure:"path"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// OutreachConfig holds the paging and stats shape parameters.
type OutreachConfig struct {
	PageSize      int `yaml:"page_size" mapstructure:"page_size"`
	TopN          int `yaml:"top_n" mapstructure:"top_n"`
	HistogramBins int `yaml:"histogram_bins" mapstructure:"histogram_bins"`
	TopStates     int `yaml:"top_states" mapstructure:"top_states"`
}

// ExportConfig configures file export output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// NotionConfig holds the Notion API token and the outreach tracker database.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	LeadsDB string `yaml:"leads_db" mapstructure:"leads_db"`
}

// SalesforceConfig holds Salesforce client-credentials auth settings.
type SalesforceConfig struct {
	Domain         string `yaml:"domain" mapstructure:"domain"`
	Username       string `yaml:"username" mapstructure:"username"`
	ConsumerKey    string `yaml:"consumer_key" mapstructure:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret" mapstructure:"consumer_secret"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An explicit path wins
// over the search locations (working directory, then $HOME/.leads-cli).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.leads-cli")
	}

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.format", "csv")
	v.SetDefault("tiers.tier1_states", model.DefaultTier1States)
	v.SetDefault("tiers.tier2_states", model.DefaultTier2States)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leads.db")
	v.SetDefault("outreach.page_size", 50)
	v.SetDefault("outreach.top_n", 50)
	v.SetDefault("outreach.histogram_bins", 30)
	v.SetDefault("outreach.top_states", 15)
	v.SetDefault("export.dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional unless explicitly named)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is coherent for the given run mode.
// Every mode needs a working store and tier table; "load" additionally needs
// a source, "notion" and "salesforce" their credentials, "serve" a port.
// Read-only engine commands validate as "outreach".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres (got %q)", c.Store.Driver))
	}

	if _, err := c.Tiers.Table(); err != nil {
		problems = append(problems, err.Error())
	}

	if c.Outreach.PageSize < 1 || c.Outreach.PageSize > 500 {
		problems = append(problems, "outreach.page_size must be between 1 and 500")
	}
	if c.Outreach.TopN < 1 {
		problems = append(problems, "outreach.top_n must be > 0")
	}
	if c.Outreach.HistogramBins < 1 {
		problems = append(problems, "outreach.histogram_bins must be > 0")
	}
	if c.Outreach.TopStates < 1 {
		problems = append(problems, "outreach.top_states must be > 0")
	}

	switch mode {
	case "load":
		if c.Source.Location == "" {
			problems = append(problems, "source.location is required")
		}
		if f := c.Source.Format; f != "" && f != "csv" && f != "xlsx" {
			problems = append(problems, fmt.Sprintf("source.format must be csv or xlsx (got %q)", f))
		}
	case "outreach":
		// Base requirements only.
	case "notion":
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.LeadsDB == "" {
			problems = append(problems, "notion.leads_db is required")
		}
	case "salesforce":
		if c.Salesforce.Domain == "" {
			problems = append(problems, "salesforce.domain is required")
		}
		if c.Salesforce.ConsumerKey == "" {
			problems = append(problems, "salesforce.consumer_key is required")
		}
		if c.Salesforce.ConsumerSecret == "" {
			problems = append(problems, "salesforce.consumer_secret is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
