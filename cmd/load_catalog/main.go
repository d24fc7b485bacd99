// Command load_catalog imports ingredient or tag reference data from a JSON file.
//
//	load_catalog -kind ingredients data/ingredients.json
//	load_catalog -kind tags data/tags.json
//
// Rows that already exist are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	kind := flag.String("kind", kindIngredients, "what to import: ingredients or tags")
	migrate := flag.Bool("migrate", true, "run auto-migration before importing")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-kind ingredients|tags] <file.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if *migrate {
		if err := database.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("failed to open file")
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	added, err := importCatalog(ctx, service.NewCatalogService(db), *kind, f)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("import failed")
	}
	log.Info().Int64("added", added).Str("kind", *kind).Str("file", path).Msg("catalog import finished")
}
