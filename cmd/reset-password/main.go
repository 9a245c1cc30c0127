package main

import (
	"flag"
	"strings"

	"toko-bangunan-pos/internal/config"
	"toko-bangunan-pos/internal/logging"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/pkg/database"

	"github.com/google/uuid"
)

func main() {
	username := flag.String("username", "", "account to reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if *username == "" || len(*password) < 6 {
		log.Fatal("usage: reset-password -username <name> -password <at least 6 characters>")
	}

	// 2. Setup Database
	db, err := database.Connect(database.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN(cfg.App.TimeZone),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	userRepo := repository.NewUserRepo(db)

	// 3. Find the account
	user, err := userRepo.FindByUsername(strings.ToLower(*username))
	if err != nil {
		log.WithError(err).Fatalf("user %s not found", *username)
	}

	// 4. Hash and store, then drop every open session
	if err := user.SetPassword(*password); err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		log.WithError(err).Fatal("failed to update password")
	}
	if err := userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		log.WithError(err).Fatal("failed to end open sessions")
	}

	log.WithField("username", user.Username).Info("password reset")
}
