/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"apna-bank-go/internal/models"

	"gopkg.in/yaml.v2"
)

func Load() (*models.Config, error) {
	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	policy, err := LoadPolicy(getEnvString("BANK_POLICY_FILE", "bank.yaml"))
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "bank.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Policy: *policy,
	}, nil
}

// DefaultPolicy returns the built-in teller rules used when no bank.yaml
// is present.
func DefaultPolicy() models.PolicyConfig {
	return models.PolicyConfig{
		BankName:      "Apna Bank",
		AccountPrefix: "APNA",
		MinDeposit:    500,
		MaxDeposit:    100000,
		MinWithdrawal: 500,
		MaxRetries:    5,
	}
}

// LoadPolicy reads the teller policy from a YAML file. A missing file is not
// an error; the defaults apply. Fields omitted from the file keep their
// default values.
func LoadPolicy(policyFile string) (*models.PolicyConfig, error) {
	var policyPath string
	if filepath.IsAbs(policyFile) {
		policyPath = policyFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		policyPath = filepath.Join(wd, policyFile)
	}

	policy := DefaultPolicy()

	data, err := os.ReadFile(policyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &policy, nil
		}
		return nil, fmt.Errorf("unable to read %s: %w", policyFile, err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", policyFile, err)
	}

	if policy.AccountPrefix == "" {
		return nil, fmt.Errorf("%s: account_prefix cannot be empty", policyFile)
	}
	if policy.MinDeposit <= 0 || policy.MaxDeposit < policy.MinDeposit {
		return nil, fmt.Errorf("%s: deposit limits must satisfy 0 < min_deposit <= max_deposit", policyFile)
	}
	if policy.MinWithdrawal <= 0 {
		return nil, fmt.Errorf("%s: min_withdrawal must be positive", policyFile)
	}
	if policy.MaxRetries <= 0 {
		return nil, fmt.Errorf("%s: max_balance_retries must be positive", policyFile)
	}

	return &policy, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
