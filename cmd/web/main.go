package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/benbenpetit/Seeet/internal/config"
	"github.com/benbenpetit/Seeet/internal/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	configFile := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	srv := web.NewServer(cfg)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Seeet web UI listening on http://localhost:%d", *port)
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
