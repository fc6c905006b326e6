package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration decodes TOML strings such as "30s" or "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ServerConfig struct {
	Port         string   `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
	PollInterval Duration `toml:"poll_interval"`
	SessionTTL   Duration `toml:"session_ttl"`
	LogMode      string   `toml:"log_mode"`
}

// TablesConfig holds fully qualified warehouse table names. They are
// interpolated into statements as identifiers, never as values.
type TablesConfig struct {
	GoldenPayors    string `toml:"golden_payors"`
	SourcePayors    string `toml:"source_payors"`
	MatchCandidates string `toml:"match_candidates"`
	Hierarchy       string `toml:"hierarchy"`
	Xref            string `toml:"xref"`
	ChangeLog       string `toml:"change_log"`
}

type SnowflakeConfig struct {
	Account   string `toml:"account"`
	User      string `toml:"user"`
	Password  string `toml:"password"`
	Role      string `toml:"role"`
	Warehouse string `toml:"warehouse"`
	Database  string `toml:"database"`
}

type WarehouseConfig struct {
	Driver       string          `toml:"driver"`
	DSN          string          `toml:"dsn"`
	AtomicWrites bool            `toml:"atomic_writes"`
	Snowflake    SnowflakeConfig `toml:"snowflake"`
	Tables       TablesConfig    `toml:"tables"`
}

type TransformConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Dir     string   `toml:"dir"`
}

type ReviewConfig struct {
	Steward       string `toml:"steward"`
	AuditPageSize int    `toml:"audit_page_size"`
}

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Warehouse WarehouseConfig `toml:"warehouse"`
	Transform TransformConfig `toml:"transform"`
	Review    ReviewConfig    `toml:"review"`
	Graph     GraphConfig     `toml:"graph"`
	LLM       LLMConfig       `toml:"llm"`
}

var supportedDrivers = map[string]bool{
	"snowflake": true,
	"pgx":       true,
	"sqlite":    true,
}

func SnowflakeTables() TablesConfig {
	return TablesConfig{
		GoldenPayors:    "MDM.MASTER.GOLDEN_PAYORS",
		SourcePayors:    "MDM.STAGING.STG_PAYORS_UNIONED",
		MatchCandidates: "MDM.MATCH.MATCH_CANDIDATES",
		Hierarchy:       "MDM.MASTER.PAYOR_HIERARCHY",
		Xref:            "MDM.MASTER.XREF",
		ChangeLog:       "MDM.AUDIT.MDM_CHANGE_LOG",
	}
}

// SandboxTables are the unqualified names used by the local SQLite warehouse.
func SandboxTables() TablesConfig {
	return TablesConfig{
		GoldenPayors:    "GOLDEN_PAYORS",
		SourcePayors:    "STG_PAYORS_UNIONED",
		MatchCandidates: "MATCH_CANDIDATES",
		Hierarchy:       "PAYOR_HIERARCHY",
		Xref:            "XREF",
		ChangeLog:       "MDM_CHANGE_LOG",
	}
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			AllowOrigins: []string{"http://localhost:5173"},
			PollInterval: Duration{30 * time.Second},
			SessionTTL:   Duration{2 * time.Hour},
			LogMode:      "development",
		},
		Warehouse: WarehouseConfig{
			Driver:       "sqlite",
			DSN:          "file:steward.db?_pragma=busy_timeout(5000)",
			AtomicWrites: true,
		},
		Transform: TransformConfig{
			Command: "dbt",
			Args:    []string{"run", "--select", "golden_payors+"},
			Dir:     "transform/payor_mdm",
		},
		Review: ReviewConfig{
			Steward:       "steward",
			AuditPageSize: 25,
		},
	}
}

// Load reads a TOML file on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default() when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides file values with environment variables, if present.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&c.Server.Port, "PORT")
	set(&c.Server.LogMode, "LOG_MODE")
	if v, ok := lookup("ALLOW_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.Server.AllowOrigins = splitList(v)
	}

	set(&c.Warehouse.Driver, "WAREHOUSE_DRIVER")
	set(&c.Warehouse.DSN, "WAREHOUSE_DSN")
	if v, ok := lookup("WAREHOUSE_ATOMIC_WRITES"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "off":
			c.Warehouse.AtomicWrites = false
		case "1", "true", "yes", "on":
			c.Warehouse.AtomicWrites = true
		}
	}
	set(&c.Warehouse.Snowflake.Account, "SNOWFLAKE_ACCOUNT")
	set(&c.Warehouse.Snowflake.User, "SNOWFLAKE_USER")
	set(&c.Warehouse.Snowflake.Password, "SNOWFLAKE_PASSWORD")
	set(&c.Warehouse.Snowflake.Role, "SNOWFLAKE_ROLE")
	set(&c.Warehouse.Snowflake.Warehouse, "SNOWFLAKE_WAREHOUSE")
	set(&c.Warehouse.Snowflake.Database, "SNOWFLAKE_DATABASE")

	set(&c.Transform.Dir, "TRANSFORM_DIR")
	set(&c.Review.Steward, "STEWARD_NAME")

	set(&c.Graph.URI, "MEMGRAPH_URI")
	set(&c.Graph.User, "MEMGRAPH_USER")
	set(&c.Graph.Password, "MEMGRAPH_PASSWORD")

	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")

	// Snowflake credentials without an explicit DSN imply the snowflake driver.
	if _, hasDriver := lookup("WAREHOUSE_DRIVER"); !hasDriver && c.Warehouse.Snowflake.Account != "" {
		if _, hasDSN := lookup("WAREHOUSE_DSN"); !hasDSN {
			c.Warehouse.Driver = "snowflake"
			c.Warehouse.DSN = ""
		}
	}
}

// ResolveTables fills unset table names with the defaults for the driver.
func (c *Config) ResolveTables() {
	defaults := SnowflakeTables()
	if c.Warehouse.Driver == "sqlite" {
		defaults = SandboxTables()
	}
	t := &c.Warehouse.Tables
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&t.GoldenPayors, defaults.GoldenPayors)
	fill(&t.SourcePayors, defaults.SourcePayors)
	fill(&t.MatchCandidates, defaults.MatchCandidates)
	fill(&t.Hierarchy, defaults.Hierarchy)
	fill(&t.Xref, defaults.Xref)
	fill(&t.ChangeLog, defaults.ChangeLog)
}

func (c *Config) Validate() error {
	if !supportedDrivers[c.Warehouse.Driver] {
		return fmt.Errorf("unsupported warehouse driver: %q", c.Warehouse.Driver)
	}
	if c.Warehouse.Driver == "snowflake" {
		if c.Warehouse.DSN == "" && c.Warehouse.Snowflake.Account == "" {
			return errors.New("snowflake warehouse requires a dsn or an account")
		}
	} else if c.Warehouse.DSN == "" {
		return fmt.Errorf("warehouse driver %q requires a dsn", c.Warehouse.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("server port must not be empty")
	}
	if c.Review.AuditPageSize <= 0 {
		return fmt.Errorf("review.audit_page_size must be positive, got %d", c.Review.AuditPageSize)
	}
	if c.Transform.Command == "" {
		return errors.New("transform.command must not be empty")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
