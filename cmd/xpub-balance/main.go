package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/xpub-balance/internal/config"
	"github.com/tdex-network/xpub-balance/internal/core/domain"
	"github.com/tdex-network/xpub-balance/pkg/wallet"
	"github.com/urfave/cli/v2"
)

const appName = "xpub-balance"

var flags = []cli.Flag{
	&cli.UintFlag{
		Name:  "n",
		Usage: "number of receive and change addresses considered for the totals",
	},
	&cli.StringFlag{
		Name:    "esplora",
		Aliases: []string{"e", "url"},
		Usage:   "base url of the esplora REST API",
	},
	&cli.BoolFlag{
		Name:    "change",
		Aliases: []string{"c"},
		Usage:   "display change addresses instead of receive ones",
	},
	&cli.BoolFlag{
		Name:    "offline",
		Aliases: []string{"o"},
		Usage:   "only derive and print addresses, without querying the explorer",
	},
	&cli.StringFlag{
		Name:  "network",
		Usage: "address encoding, either bitcoin or liquid",
	},
	&cli.IntFlag{
		Name:  "concurrency",
		Usage: "max number of address queries in flight",
	},
	&cli.IntFlag{
		Name:  "timeout",
		Usage: "per request timeout in seconds",
	},
	&cli.IntFlag{
		Name:  "rate-limit",
		Usage: "max requests per second, 0 means unlimited",
	},
	&cli.BoolFlag{
		Name:  "mempool",
		Usage: "include unconfirmed transactions",
	},
	&cli.BoolFlag{
		Name:  "btc",
		Usage: "show amounts in BTC instead of satoshis",
	},
	&cli.IntFlag{
		Name:  "log-level",
		Usage: "logging level, from 0 (panic) to 6 (trace)",
	},
}

// flagKeys maps the flags that override a config value to their key.
var flagKeys = map[string]string{
	"n":           config.NKey,
	"esplora":     config.EsploraURLKey,
	"network":     config.NetworkKey,
	"concurrency": config.ConcurrencyKey,
	"timeout":     config.RequestTimeoutKey,
	"rate-limit":  config.RateLimitKey,
	"mempool":     config.MempoolKey,
	"log-level":   config.LogLevelKey,
}

func main() {
	if err := config.InitConfig(); err != nil {
		fatal(err)
	}

	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = appName
	app.Usage = "show the balance of the addresses of an extended public key"
	app.ArgsUsage = "<xpub> [start] [end]"
	app.Flags = flags
	app.Action = balanceAction

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		fatal(err)
	}
}

func balanceAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 || ctx.NArg() > 3 {
		return &invalidUsageError{ctx}
	}
	extendedKey := ctx.Args().Get(0)

	if err := applyFlags(ctx); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	cfg := config.ApplicationConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	svc := cfg.BalanceService()
	opts := config.QueryOpts(extendedKey, ctx.Bool("change"))

	if ctx.Bool("offline") {
		return svc.ListAddresses(
			ctx.Context, opts, func(d domain.AddressDetail) error {
				return printAddress(os.Stdout, d)
			},
		)
	}

	stopSpinner := startSpinner(os.Stderr, "fetching address summaries")
	report, err := svc.GetBalance(ctx.Context, opts)
	stopSpinner()
	if err != nil {
		return err
	}

	printReport(os.Stdout, report, ctx.Bool("btc"))
	return nil
}

// applyFlags overrides config values with the given flags and positional
// arguments, and validates the result.
func applyFlags(ctx *cli.Context) error {
	for flag, key := range flagKeys {
		if !ctx.IsSet(flag) {
			continue
		}
		switch key {
		case config.EsploraURLKey, config.NetworkKey:
			config.Set(key, ctx.String(flag))
		case config.MempoolKey:
			config.Set(key, ctx.Bool(flag))
		case config.NKey:
			config.Set(key, ctx.Uint(flag))
		default:
			config.Set(key, ctx.Int(flag))
		}
	}

	for i, key := range []string{config.StartKey, config.EndKey} {
		arg := ctx.Args().Get(i + 1)
		if arg == "" {
			continue
		}
		index, err := parseIndex(arg)
		if err != nil {
			return err
		}
		config.Set(key, index)
	}

	return config.Validate()
}

func parseIndex(arg string) (uint32, error) {
	index, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || index > uint64(wallet.MaxIndex) {
		return 0, fmt.Errorf(
			"invalid index %q, must be an integer in range [0, %d]",
			arg, wallet.MaxIndex,
		)
	}
	return uint32(index), nil
}

type invalidUsageError struct {
	ctx *cli.Context
}

func (e *invalidUsageError) Error() string {
	return "invalid usage"
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowAppHelp(e.ctx)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[%s] %v\n", appName, err)
	}
	os.Exit(1)
}
