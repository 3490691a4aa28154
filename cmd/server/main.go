package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Mohzhal/absensi/config"
	"github.com/Mohzhal/absensi/db"
	"github.com/Mohzhal/absensi/internal/routes"
)

func main() {
	cfg := config.NewConfig()
	database := db.InitDB(cfg.DatabaseDSN)
	defer database.Close()

	redisClient := config.NewRedisClient()
	defer redisClient.Close()

	if err := ensureUploadDirs(cfg.UploadDir); err != nil {
		log.Fatalf("Failed to create upload directories: %v", err)
	}

	router := routes.Setup(cfg, database, redisClient)

	serverAddress := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("🚀 Server starting on %s", serverAddress)
	log.Fatal(http.ListenAndServe(serverAddress, router))
}

func ensureUploadDirs(root string) error {
	return os.MkdirAll(filepath.Join(root, "attendance"), 0755)
}
