package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"metalquotes/internal/aggregate"
	"metalquotes/internal/cache"
	"metalquotes/internal/chain"
	"metalquotes/internal/config"
	"metalquotes/internal/httpx"
	"metalquotes/internal/logutils"
	"metalquotes/internal/market"
	"metalquotes/internal/provider"
	"metalquotes/internal/resolver"
)

const (
	ConfigFlag  = "config"
	TimeoutFlag = "timeout"
	VerboseFlag = "verbose"
	SymbolFlag  = "symbol"
)

type env struct {
	resolver *resolver.Resolver
	service  *market.Service
	timeout  time.Duration
}

func main() {
	app := &cli.App{
		Name:  "fetch",
		Usage: "Query the configured metal price providers once",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    ConfigFlag,
				Aliases: []string{"c"},
				Usage:   "Path to config.json or config.yaml",
				EnvVars: []string{"CONFIG_FILE"},
			},
			&cli.DurationFlag{
				Name:  TimeoutFlag,
				Value: 20 * time.Second,
				Usage: "Overall deadline",
			},
			&cli.BoolFlag{
				Name:    VerboseFlag,
				Aliases: []string{"v"},
				Usage:   "Log every provider attempt",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "spot",
				Usage: "Resolve the spot price through the fallback chain",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    SymbolFlag,
						Aliases: []string{"s"},
						Usage:   "GOLD, SILVER, XAU, XAG (repeatable); default both",
					},
				},
				Action: func(cCtx *cli.Context) error {
					e, err := setup(cCtx)
					if err != nil {
						return err
					}
					symbols, err := parseSymbols(cCtx.StringSlice(SymbolFlag))
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					ctx, cancel := context.WithTimeout(cCtx.Context, e.timeout)
					defer cancel()

					failed := false
					for _, sym := range symbols {
						q, err := e.resolver.Resolve(ctx, sym)
						if err != nil {
							failed = true
							report(sym, err)
							continue
						}
						printJSON(q)
					}
					if failed {
						return cli.Exit("one or more symbols could not be resolved", 1)
					}
					return nil
				},
			},
			{
				Name:  "candles",
				Usage: "Build a candle series from the tick feed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: SymbolFlag, Aliases: []string{"s"}, Value: "GOLD"},
					&cli.StringFlag{Name: "tf", Value: aggregate.DefaultTimeframe, Usage: "1m, 5m, 15m, 1h, 4h, 1d"},
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: func(cCtx *cli.Context) error {
					e, err := setup(cCtx)
					if err != nil {
						return err
					}
					ctx, cancel := context.WithTimeout(cCtx.Context, e.timeout)
					defer cancel()
					resp := e.service.Candles(ctx, cCtx.String(SymbolFlag), cCtx.String("tf"), cCtx.Int("limit"))
					printJSON(resp)
					if !resp.OK {
						return cli.Exit(resp.Error, 1)
					}
					return nil
				},
			},
			{
				Name:  "ticks",
				Usage: "Dump the most recent raw ticks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: SymbolFlag, Aliases: []string{"s"}, Value: "GOLD"},
					&cli.IntFlag{Name: "n", Value: 10, Usage: "Number of ticks to print"},
				},
				Action: func(cCtx *cli.Context) error {
					e, err := setup(cCtx)
					if err != nil {
						return err
					}
					sym, err := provider.ParseSymbol(cCtx.String(SymbolFlag))
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					ctx, cancel := context.WithTimeout(cCtx.Context, e.timeout)
					defer cancel()
					ticks, err := e.service.Ticks(ctx, sym)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if n := cCtx.Int("n"); n > 0 && len(ticks) > n {
						ticks = ticks[len(ticks)-n:]
					}
					printJSON(ticks)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(cCtx *cli.Context) (*env, error) {
	cfg, err := config.Load(cCtx.String(ConfigFlag))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("config: %v", err), 2)
	}
	level := "warn"
	if cCtx.Bool(VerboseFlag) {
		level = "debug"
	}
	logger, err := logutils.New(level, true)
	if err != nil {
		return nil, err
	}

	timeout := cCtx.Duration(TimeoutFlag)
	ch, err := chain.Build(cfg, httpx.New(timeout), logger)
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	r := resolver.New(ch.Attempts, resolver.WithLogger(logger))
	// no caching across a single CLI run
	spot := cache.New(r, nil, cache.Config{}, cache.WithLogger(logger))
	svc := market.New(spot, ch.Ticks, market.Config{MaxCandles: cfg.Server.MaxCandles}, market.WithLogger(logger))
	return &env{resolver: r, service: svc, timeout: timeout}, nil
}

func parseSymbols(raw []string) ([]provider.Symbol, error) {
	if len(raw) == 0 {
		return provider.Symbols, nil
	}
	out := make([]provider.Symbol, 0, len(raw))
	for _, s := range raw {
		sym, err := provider.ParseSymbol(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}

// report prints one line per failed attempt.
func report(sym provider.Symbol, err error) {
	var agg *resolver.AggregateError
	if !errors.As(err, &agg) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", sym, err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: no provider succeeded\n", sym)
	for _, f := range agg.Failures {
		fmt.Fprintf(os.Stderr, "  %-16s %-12s %v\n", f.Label, provider.KindOf(f.Err), f.Err)
	}
	if agg.Cause != nil {
		fmt.Fprintf(os.Stderr, "  stopped: %v\n", agg.Cause)
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
