package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kaetram/client/internal/app"
	"kaetram/client/internal/config"
)

func main() {
	var configPath string
	var view bool
	flag.StringVar(&configPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&view, "view", false, "render the world in the terminal")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, app.Options{View: view}); err != nil {
		log.Fatalf("%v", err)
	}
}
