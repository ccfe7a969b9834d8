package main

import (
	"log"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/aussiebroadwan/tilldesk/internal/identity/app"
)

func main() {
	configFile := flag.String("config", "", "YAML file with base configuration (env vars win)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load(*envFile)

	if *configFile == "" {
		*configFile = app.ConfigFileFromEnv()
	}

	cfg, err := app.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
