package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"apna-bank-go/internal/common"
	"apna-bank-go/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type demoAccount struct {
	name   string
	phone  string
	gender string
	age    int
}

type seededAccount struct {
	name   string
	number string
	pin    string
}

var demoAccounts = []demoAccount{
	{"Alice Johnson", "9876543210", "F", 25},
	{"Bob Smith", "9876543211", "M", 34},
	{"Carol Williams", "9876543212", "F", 41},
}

// seedDemoAccounts creates the demo accounts concurrently; creation under
// concurrency is exactly what the number/PIN issuance has to survive.
func seedDemoAccounts(ctx context.Context, services *common.Services) ([]seededAccount, error) {
	var (
		mu     sync.Mutex
		seeded []seededAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, demo := range demoAccounts {
		demo := demo
		g.Go(func() error {
			number, pin, err := services.Ledger.Create(gctx, demo.name, demo.phone, demo.gender, demo.age)
			if err != nil {
				zap.L().Error("Failed to seed demo account",
					zap.String("name", demo.name),
					zap.Error(err))
				return err
			}

			mu.Lock()
			seeded = append(seeded, seededAccount{name: demo.name, number: number, pin: pin})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return seeded, err
	}
	return seeded, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	seedFlag := flag.Bool("seed", false, "Create demo accounts after initializing the schema")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	// Opening the service creates the schema.
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	zap.L().Info("Database initialized", zap.String("path", cfg.Database.Path))

	if !*seedFlag {
		fmt.Println("Database schema initialized.")
		return
	}

	seeded, err := seedDemoAccounts(ctx, services)
	if err != nil {
		zap.L().Warn("Demo account seeding completed with failures", zap.Error(err))
	}

	common.WriteHeader(os.Stdout, "DEMO ACCOUNTS")
	for _, account := range seeded {
		fmt.Printf("%-16s Account: %s  PIN: %s\n", account.name, account.number, account.pin)
	}
	common.WriteFooter(os.Stdout, "Demo PINs are shown once; they are stored only as hashes.")
}
