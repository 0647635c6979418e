// Package main provides the catalog command line tool.
//
// Usage:
//
//	catalog [global flags] seed -token T [-file seed.yml] [-replace]
//	catalog [global flags] wipe -token T
//	catalog [global flags] wipe-all -admin-token A
//	catalog [global flags] stats -token T
//
// Global flags are the configuration flags (-data-path, -log-level, ...).
// Every command prints its result as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/untdf/catalog/internal/config"
	"github.com/untdf/catalog/internal/di"
	"github.com/untdf/catalog/internal/domain"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/service"
)

var errUsage = errors.New("usage: catalog [flags] <seed|wipe|wipe-all|stats> [command flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	globals := flag.NewFlagSet("catalog", flag.ContinueOnError)
	cfg, err := config.LoadConfig(globals, args)
	if err != nil {
		return err
	}

	rest := globals.Args()
	if len(rest) == 0 {
		return errUsage
	}

	injector := di.NewContainer(cfg)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "catalog: shutdown: %v\n", err)
		}
	}()

	var result any
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "seed":
		result, err = runSeed(ctx, injector, cfg, cmdArgs)
	case "wipe":
		result, err = runWipe(ctx, injector, cmdArgs)
	case "wipe-all":
		result, err = runWipeAll(ctx, injector, cfg, cmdArgs)
	case "stats":
		result, err = runStats(ctx, injector, cmdArgs)
	default:
		return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// seedResult carries the wipe stats too when -replace was given.
type seedResult struct {
	Wipe *domain.WipeStats `json:"wipe,omitempty"`
	Seed domain.SeedStats  `json:"seed"`
}

func runSeed(ctx context.Context, i do.Injector, cfg *config.Config, args []string) (any, error) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	token := fs.String("token", "", "Tenant token")
	file := fs.String("file", cfg.Catalog.SeedFile, "Seed document")
	replace := fs.Bool("replace", false, "Wipe the tenant before seeding")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var result seedResult
	if *replace {
		wiper := do.MustInvoke[*service.Wiper](i)
		stats, err := wiper.WipeTenant(ctx, *token)
		if err != nil {
			return nil, err
		}
		result.Wipe = &stats
	}

	seeder := do.MustInvoke[*service.Seeder](i)
	stats, err := seeder.SeedFile(ctx, *token, *file)
	if err != nil {
		return nil, err
	}
	result.Seed = stats
	return result, nil
}

func runWipe(ctx context.Context, i do.Injector, args []string) (any, error) {
	fs := flag.NewFlagSet("wipe", flag.ContinueOnError)
	token := fs.String("token", "", "Tenant token")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return do.MustInvoke[*service.Wiper](i).WipeTenant(ctx, *token)
}

func runWipeAll(ctx context.Context, i do.Injector, cfg *config.Config, args []string) (any, error) {
	fs := flag.NewFlagSet("wipe-all", flag.ContinueOnError)
	presented := fs.String("admin-token", "", "Admin token (must match ADMIN_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	grant, err := service.GrantAdmin(cfg.Admin.Token, *presented)
	if err != nil {
		log := do.MustInvoke[*logger.Logger](i)
		log.Warn("global wipe refused")
		return nil, err
	}
	return do.MustInvoke[*service.Wiper](i).WipeGlobal(ctx, grant)
}

func runStats(ctx context.Context, i do.Injector, args []string) (any, error) {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	token := fs.String("token", "", "Tenant token")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return do.MustInvoke[*service.CatalogService](i).Counts(ctx, *token)
}
