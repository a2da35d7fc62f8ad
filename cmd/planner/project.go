package main

import (
	"errors"
	"fmt"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/logger"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func projectCmd() *cobra.Command {
	var saveDir string
	cmd := &cobra.Command{
		Use:   "project <household.yaml>",
		Short: "Project a household and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Get()
			h, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			summary, err := newEngine().RunProjection(cmd.Context(), h)
			if err != nil {
				var pe *calculation.ProjectionError
				if errors.As(err, &pe) && pe.Year != 0 {
					log.Errorw("projection aborted", "year", pe.Year, "entity", pe.EntityID, "error", pe.Err)
				}
				return err
			}

			format := viper.GetString("output.format")
			if saveDir != "" {
				f := output.GetFormatterByName(format)
				if f == nil {
					return fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, format)
				}
				path, err := output.WriteFormatted(f, summary, saveDir)
				if err != nil {
					return err
				}
				log.Infow("report written", "path", path)
				return nil
			}
			return output.GenerateReport(summary, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("format", "console", "output format (console, csv, detailed-csv, json)")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "write the report to a timestamped file in this directory")
	_ = viper.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	return cmd
}
