package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ThimethZ03/utility-billing-system2/internal/config"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/repository/postgres"
	"github.com/ThimethZ03/utility-billing-system2/migrations"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	var seedFile string
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and optionally import bills",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := postgres.New(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if status {
				versions, err := postgres.AppliedMigrations(db)
				if err != nil {
					return err
				}
				for _, v := range versions {
					fmt.Println(v)
				}
				return nil
			}

			migrationsFS, err := migrations.GetFS(cfg.Database.Driver)
			if err != nil {
				return err
			}
			applied, err := postgres.RunMigrations(db, migrationsFS)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Printf("Applied %s\n", name)
			}
			if len(applied) == 0 {
				fmt.Println("Database is up to date")
			}

			if seedFile == "" {
				return nil
			}
			n, err := seedBills(cmd.Context(), postgres.NewBillRepository(db), seedFile)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d bills from %s\n", n, seedFile)
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&seedFile, "seed", "", "JSON file with an array of bills to import")
	cmd.Flags().BoolVar(&status, "status", false, "list applied migrations and exit")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type billInserter interface {
	Insert(ctx context.Context, b *usage.BillRecord) error
}

// seedBills imports the bills in path. Bills without an ID get a random one.
func seedBills(ctx context.Context, repo billInserter, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var bills []*usage.BillRecord
	if err := json.Unmarshal(raw, &bills); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, b := range bills {
		if b.UserID <= 0 {
			return i, fmt.Errorf("bill %d has no user_id", i)
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if err := repo.Insert(ctx, b); err != nil {
			return i, err
		}
	}
	return len(bills), nil
}
