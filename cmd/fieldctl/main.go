package main

import (
	"fmt"
	"os"

	"fieldtrack-backend/internal/cli"
	"fieldtrack-backend/internal/client"
	"fieldtrack-backend/internal/offline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("FIELDTRACK_CONFIG")
	if configPath == "" {
		var err error
		configPath, err = client.DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	cfg, err := client.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if url := os.Getenv("FIELDTRACK_SERVER"); url != "" {
		cfg.ServerURL = url
	}

	queue, err := offline.Open(cfg.QueuePath)
	if err != nil {
		return fmt.Errorf("opening action queue: %w", err)
	}
	defer queue.Close()

	var location client.LocationProvider
	if cfg.GPSCommand != "" {
		location = client.NewCommandProvider(cfg.GPSCommand)
	} else {
		location = client.UnconfiguredProvider{}
	}

	app := &cli.App{
		ConfigPath: configPath,
		Config:     cfg,
		Queue:      queue,
		API:        client.NewAPI(cfg.ServerURL, cfg.Token),
		Location:   location,
	}

	return cli.NewRootCmd(app).Execute()
}
