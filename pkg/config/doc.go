// Package config loads the envctl configuration from environment variables.
//
// Variables share the ENVCTL_ prefix and may be seeded from .env files with
// github.com/joho/godotenv; values already present in the process
// environment win. Parsing is done by github.com/caarlos0/env/v11.
//
//	cfg, err := config.Load()            // optional ./.env
//	cfg, err := config.Load("prod.env")  // explicit files must exist
//
// Store selects the key/value backend: memory, file, redis or postgres.
// ENVCTL_PRODUCTION_MAP holds service:environment pairs separated by commas:
//
//	ENVCTL_PRODUCTION_MAP=Quotes:prod,Orders:live
package config
