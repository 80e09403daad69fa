package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/benbenpetit/Seeet/internal/config"
	seeetmcp "github.com/benbenpetit/Seeet/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	seeetmcp.SetRules(cfg.Rules.EngineConfig())

	s := server.NewMCPServer("seeet", "1.0.0")
	seeetmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
