package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/adapters/repositories"
	"github.com/spad0604/robot-delivery/internal/config"
	"github.com/spad0604/robot-delivery/internal/platform/db"
	"github.com/spad0604/robot-delivery/internal/platform/logger"
)

// dbtool initializes the SQL schema and seeds the destination landmarks.
func main() {
	fs := pflag.NewFlagSet("dbtool", pflag.ExitOnError)
	fs.String("seed", "", "destinations JSON file (env SEED_PATH)")
	fs.Bool("schema-only", false, "create tables without seeding")
	_ = fs.Parse(os.Args[1:])

	v := viper.New()
	if err := v.BindPFlag("SEED_PATH", fs.Lookup("seed")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	conn, err := db.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	log.Info("initializing database schema", zap.String("driver", cfg.Database.Driver))
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal("schema initialization failed", zap.Error(err))
	}
	log.Info("schema ready")

	if schemaOnly, _ := fs.GetBool("schema-only"); schemaOnly {
		return
	}

	log.Info("seeding destinations", zap.String("path", cfg.Database.SeedPath))
	n, err := repositories.SeedFromJSON(conn, cfg.Database.Driver, cfg.Database.SeedPath)
	if err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("seeding complete", zap.Int("destinations", n))
}
