package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/logger"
	"github.com/rpgo/household-planner/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve projections over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// .env values never override variables already set in the environment.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			if err := loadSettings(); err != nil {
				return err
			}

			srv := server.New(newEngine(), config.NewInputParser(), logger.Get())
			return srv.ListenAndServe(cmd.Context(), settings.ServerAddress)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file read before serving")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
