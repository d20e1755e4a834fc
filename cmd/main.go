package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// @title Livestock Alerts API
// @version 1.0
// @description Livestock health alert lifecycle and proximity notification service.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "livestock-alerts",
		Short:         "Livestock health alerts with regional notification fan-out",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (env variables and .env are always read)")

	serveCmd := newServeCmd(&configPath)
	// Без подкоманды запускается сервер
	root.RunE = serveCmd.RunE
	root.AddCommand(serveCmd, newMigrateCmd(&configPath))
	return root
}
