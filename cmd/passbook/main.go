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

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"apna-bank-go/internal/common"
	"apna-bank-go/internal/config"
	"apna-bank-go/internal/passbook"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// readPIN never takes the PIN from a flag so it cannot end up in shell
// history; it is read without echo when attached to a terminal.
func readPIN() (string, error) {
	fmt.Fprint(os.Stderr, "Enter PIN: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		pin, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(pin)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	accountFlag := flag.String("account", "", "Account number (required)")
	flag.Parse()

	if *accountFlag == "" {
		zap.L().Fatal("Required flag missing: --account")
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	pin, err := readPIN()
	if err != nil {
		zap.L().Fatal("Failed to read PIN", zap.Error(err))
	}

	reporter := passbook.NewReporter(services.Store, services.Store)
	rows, err := reporter.Statement(ctx, *accountFlag, pin)
	if err != nil {
		zap.L().Fatal("Failed to generate statement", zap.Error(err))
	}

	passbook.Render(os.Stdout, cfg.Policy.BankName, *accountFlag, rows)
}
