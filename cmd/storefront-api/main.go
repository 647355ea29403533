package main

import (
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/comeca-ai/leao-pet-vitality/cmd/storefront-api/app"
	"github.com/comeca-ai/leao-pet-vitality/configs"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	app, cleanup, err := app.InitWithConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	log.Printf("storefront-api (%s) listening on %s", env, cfg.App.HTTPAddr)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
