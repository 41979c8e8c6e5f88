package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/export"
)

var exportFlags struct {
	study string
	db    string
	out   string
	multi bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a study's completed trials to Parquet",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStorage(exportFlags.db)
		if err != nil {
			return err
		}
		defer store.Close()

		directions := []core.Direction{core.DirectionMinimize}
		if exportFlags.multi {
			directions = append(directions, core.DirectionMinimize)
		}
		study := core.NewStudy(store,
			core.WithStudyID(exportFlags.study),
			core.WithDirections(directions...),
		)

		if err := export.WriteParquet(exportFlags.out, study); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportFlags.out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.study, "study", "benchmark", "study identifier")
	exportCmd.Flags().StringVar(&exportFlags.db, "db", "hubsampler_trials.db", "SQLite trial database")
	exportCmd.Flags().StringVar(&exportFlags.out, "out", "trials.parquet", "output Parquet file")
	exportCmd.Flags().BoolVar(&exportFlags.multi, "multi-objective", true, "study has two objectives")
	rootCmd.AddCommand(exportCmd)
}
