package main

import (
	"os"

	"github.com/campushub/registrar/internal/pkg/logger"
	"github.com/campushub/registrar/internal/server"
)

// @title CampusHub Registrar API
// @version 1.0
// @description Course registration engine with seat tracking, waitlists and real-time availability events

// @contact.name API Support
// @contact.email support@registrar.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
	os.Exit(0)
}
