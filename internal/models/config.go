package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Policy   PolicyConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// PolicyConfig holds the teller business rules loaded from bank.yaml.
// Amounts are in whole currency units.
type PolicyConfig struct {
	BankName      string `yaml:"bank_name"`
	AccountPrefix string `yaml:"account_prefix"`
	MinDeposit    int64  `yaml:"min_deposit"`
	MaxDeposit    int64  `yaml:"max_deposit"`
	MinWithdrawal int64  `yaml:"min_withdrawal"`
	MaxRetries    int    `yaml:"max_balance_retries"`
}
