package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/benbenpetit/Seeet/internal/config"
	seeetnet "github.com/benbenpetit/Seeet/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "play":
		runPlay(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  seeet play  [--config FILE] [--seed N] [--board N] [--auto]")
	fmt.Println("  seeet serve [--config FILE] [--port P] [--log]")
	fmt.Println("  seeet join  [--config FILE] [--addr ADDR]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play a game in this terminal")
	fmt.Println("  serve   Host games over TCP, one per connection")
	fmt.Println("  join    Connect to a game server and play")
	fmt.Println()
	fmt.Println("Rules and server settings can also be set with SEEET_* environment variables.")
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func runPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configFile := fs.String("config", "", "path to a YAML or TOML config file")
	seed := fs.Int64("seed", 0, "RNG seed for a reproducible deal (0 for random)")
	board := fs.Int("board", 0, "cards dealt at the start (overrides config)")
	auto := fs.Bool("auto", false, "refill the board after each Set (overrides config)")
	fs.Parse(args)

	cfg := loadConfig(*configFile)
	if *seed != 0 {
		cfg.Rules.Seed = *seed
	}
	if *board > 0 {
		cfg.Rules.InitialBoardSize = *board
	}
	if *auto {
		cfg.Rules.AutoReplenish = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := seeetnet.PlayLocal(ctx, cfg.Rules.EngineConfig(), os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFile := fs.String("config", "", "path to a YAML or TOML config file")
	port := fs.String("port", "", "TCP port to listen on (overrides config)")
	logEvents := fs.Bool("log", false, "print every game event to stdout")
	fs.Parse(args)

	cfg := loadConfig(*configFile)
	if *port != "" {
		cfg.Server.Port = *port
	}

	srv := &seeetnet.Server{
		Port:         cfg.Server.Port,
		Engine:       cfg.Rules.EngineConfig(),
		CommandRate:  cfg.Server.CommandRate,
		CommandBurst: cfg.Server.CommandBurst,
	}
	if *logEvents {
		srv.LogOutput = os.Stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	configFile := fs.String("config", "", "path to a YAML or TOML config file")
	addr := fs.String("addr", "", "server address to connect to (overrides config)")
	fs.Parse(args)

	cfg := loadConfig(*configFile)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := seeetnet.Connect(context.Background(), cfg.Server.Addr, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
