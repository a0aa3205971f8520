package main

import (
	"log"
	"net/http"

	"github.com/chalkline/bracketd/internal/config"
	"github.com/chalkline/bracketd/internal/db"
	"github.com/chalkline/bracketd/internal/live"
)

func main() {
	cfg := config.Load()

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	hub := live.NewHub()
	go hub.Run()

	router := newRouter(cfg, database, hub)

	log.Println("Server starting on", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatal(err)
	}
}
