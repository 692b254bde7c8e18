package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matkollen/offerscraper/internal/browser"
	"github.com/matkollen/offerscraper/internal/config"
	"github.com/matkollen/offerscraper/internal/cooldown"
	"github.com/matkollen/offerscraper/internal/database"
	"github.com/matkollen/offerscraper/internal/models"
	"github.com/matkollen/offerscraper/internal/scraper"
	"github.com/matkollen/offerscraper/internal/syncer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scrapectl",
		Short:         "Scrape Swedish grocery chain stores and offers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(chainsCmd(), storesCmd(), offersCmd(), validateCmd(), syncCmd())
	return root
}

func browserOpts() (*browser.Options, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.ProxyServer = cfg.Browser.ProxyServer
	return opts, cfg, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func chainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List supported chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(models.Chains())
		},
	}
}

func storesCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "stores <chain> <query>",
		Short: "Search stores for a chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, ok := models.ParseChain(args[0])
			if !ok {
				return fmt.Errorf("unknown chain %q", args[0])
			}

			opts, cfg, err := browserOpts()
			if err != nil {
				return err
			}

			s, err := scraper.New(chain, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			result := s.SearchStores(cmd.Context(), args[1])
			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("store search failed: %s", result.Error)
			}

			if save {
				if err := cfg.RequireDatabase(); err != nil {
					return err
				}
				ctx := cmd.Context()
				db, err := database.New(ctx, database.Config{URL: cfg.Database.URL})
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.EnsureSchema(ctx); err != nil {
					return err
				}

				for _, store := range result.Data {
					if err := db.UpsertStore(ctx, store); err != nil {
						return fmt.Errorf("save store %s: %w", store.ID, err)
					}
				}
				fmt.Fprintf(os.Stderr, "saved %d store(s)\n", len(result.Data))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "upsert found stores into the database")
	return cmd
}

func offersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offers <chain> <storeId>",
		Short: "Scrape current offers for a store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, ok := models.ParseChain(args[0])
			if !ok {
				return fmt.Errorf("unknown chain %q", args[0])
			}

			opts, cfg, err := browserOpts()
			if err != nil {
				return err
			}

			store, err := resolveStore(cmd.Context(), cfg, chain, args[1])
			if err != nil {
				return err
			}

			s, err := scraper.New(chain, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			result := s.GetOffers(cmd.Context(), store)
			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("offer scrape failed: %s", result.Error)
			}
			return nil
		},
	}
}

// resolveStore looks the store up in the database when one is configured and
// otherwise reconstructs a minimal store from the chain-prefixed id.
func resolveStore(ctx context.Context, cfg *config.Config, chain models.Chain, storeID string) (models.Store, error) {
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, database.Config{URL: cfg.Database.URL})
		if err == nil {
			defer db.Close()
			if store, err := db.GetStore(ctx, storeID); err == nil && store != nil {
				return *store, nil
			}
		}
	}

	externalID := storeID
	if prefix := string(chain) + "-"; len(storeID) > len(prefix) && storeID[:len(prefix)] == prefix {
		externalID = storeID[len(prefix):]
	}
	return models.Store{
		ID:         storeID,
		Name:       storeID,
		Chain:      chain,
		ExternalID: externalID,
	}, nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [chain]",
		Short: "Run the page health check for one or all chains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chains := models.Chains()
			if len(args) == 1 {
				chain, ok := models.ParseChain(args[0])
				if !ok {
					return fmt.Errorf("unknown chain %q", args[0])
				}
				chains = []models.Chain{chain}
			}

			opts, _, err := browserOpts()
			if err != nil {
				return err
			}

			failed := 0
			for _, chain := range chains {
				s, err := scraper.New(chain, opts)
				if err != nil {
					return err
				}

				result := s.Validate(cmd.Context())
				s.Close()

				if err := printJSON(result); err != nil {
					return err
				}
				if !result.Success || !result.Data.Valid {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d chain(s) failed validation", failed)
			}
			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync <chain>",
		Short: "Refresh offers for every known store of a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, ok := models.ParseChain(args[0])
			if !ok {
				return fmt.Errorf("unknown chain %q", args[0])
			}

			opts, cfg, err := browserOpts()
			if err != nil {
				return err
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.New(ctx, database.Config{
				URL:      cfg.Database.URL,
				MaxConns: cfg.Database.MaxConns,
				MinConns: cfg.Database.MinConns,
			})
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}

			stores, err := db.ListStores(ctx, chain)
			if err != nil {
				return err
			}
			if len(stores) == 0 {
				return fmt.Errorf("no stores known for chain %s, run stores first", chain)
			}

			// Cooldown is applied here, before the orchestrator, never
			// inside it.
			tracker := cooldown.New(redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}), cfg.Sync.Cooldown)

			var due []models.Store
			for _, store := range stores {
				if !force && tracker.OnCooldown(ctx, store.ID) {
					continue
				}
				due = append(due, store)
			}
			if len(due) == 0 {
				fmt.Println("all stores on cooldown, nothing to sync")
				return nil
			}

			s, err := scraper.New(chain, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			report := syncer.New(db).SyncStores(ctx, s, due)
			for _, sr := range report.Stores {
				if sr.Error == "" {
					if err := tracker.Mark(ctx, sr.StoreID); err != nil {
						slog.Warn("failed to mark cooldown", "store_id", sr.StoreID, "error", err)
					}
				}
			}

			if err := printJSON(report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d store(s) failed to sync", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "ignore sync cooldowns")
	return cmd
}
