package driver

import (
	"fmt"

	"github.com/snowflakedb/gosnowflake"

	"github.com/agenthands/steward/internal/config"
)

// SnowflakeDSN assembles a DSN from discrete credentials, the way the
// console was configured before it took a DSN directly.
func SnowflakeDSN(cfg config.SnowflakeConfig) (string, error) {
	if cfg.Account == "" {
		return "", fmt.Errorf("snowflake account is required")
	}
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Role:      cfg.Role,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build snowflake dsn: %w", err)
	}
	return dsn, nil
}
