package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/assistapp/assistance/internal/database"
	"github.com/assistapp/assistance/pkg/idcodec"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

type App struct {
	logger *slog.Logger
	uid    string
	dbm    *database.DatabaseManager
	codec  *idcodec.Codec
}

func NewApp(dbm *database.DatabaseManager, codec *idcodec.Codec) *App {
	return &App{
		logger: slog.Default(),
		uid:    uuid.NewString(),
		dbm:    dbm,
		codec:  codec,
	}
}

func main() {
	configFile := flag.String("config", "assistance.yml", "name of config file")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	viper.SetConfigFile(*configFile)

	viper.SetDefault("api.addr", ":8080")
	viper.SetDefault("db", "assistance.db")
	viper.SetDefault("id.secret", "change-me")

	if err := viper.ReadInConfig(); err != nil {
		slog.Info("no config file, using defaults")
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level, AddSource: false})
	slog.SetDefault(slog.New(h))

	slog.Info("starting", slog.String("branch", gitBranch), slog.String("rev", gitRevision))

	db, err := database.GetDatabase(viper.GetString("db"), *debug)
	if err != nil {
		slog.Error("database error", slog.Any("error", err))
		os.Exit(1)
	}

	dbm := database.New(db)

	if err := dbm.Migrate(); err != nil {
		slog.Error("migration error", slog.Any("error", err))
		os.Exit(1)
	}

	codec, err := idcodec.New(viper.GetString("id.secret"))
	if err != nil {
		slog.Error("codec error", slog.Any("error", err))
		os.Exit(1)
	}

	app := NewApp(dbm, codec)
	app.logger.Info("app started", slog.String("uid", app.uid))

	api := NewHttpAPI(app, viper.GetString("api.addr"))

	if err := api.Listen(); err != nil {
		slog.Error("listen error", slog.Any("error", err))
		os.Exit(1)
	}
}
