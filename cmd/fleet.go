package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetops/fleetd/config"
	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/stats"
	"github.com/fleetops/fleetd/core/store"
	"github.com/fleetops/fleetd/infra/storage"
	"github.com/fleetops/fleetd/pkg/export"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var lsStatus string

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered vehicles",
	RunE:  runFleetLs,
}

var fleetStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate fleet statistics",
	RunE:  runFleetStats,
}

var exportFormat string

var fleetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vehicle list as JSON or CSV",
	RunE:  runFleetExport,
}

func init() {
	fleetLsCmd.Flags().StringVar(&lsStatus, "status", "", "only show vehicles with this status")
	fleetExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json or csv)")
	fleetCmd.AddCommand(fleetLsCmd)
	fleetCmd.AddCommand(fleetStatsCmd)
	fleetCmd.AddCommand(fleetExportCmd)
	rootCmd.AddCommand(fleetCmd)
}

func openStore() (store.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Backend == "memory" {
		return nil, fmt.Errorf("memory backend holds no data outside a running service")
	}
	return storage.NewSQLiteStore(cfg.Store.Path)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var f store.Filter
	if lsStatus != "" {
		status, ok := model.ParseStatus(lsStatus)
		if !ok {
			return fmt.Errorf("unknown status %q", lsStatus)
		}
		f.Status = status
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	vehicles, err := st.Vehicles().FindAll(ctx, f)
	if err != nil {
		return err
	}
	for _, v := range vehicles {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.0f km\n", v.ID, v.DisplayName(), v.Status, v.TotalKilometers)
	}
	return nil
}

func runFleetStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := stats.New(st.Vehicles()).Collect(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "total:                  %d\n", s.Total)
	fmt.Fprintf(out, "available:              %d\n", s.Available)
	fmt.Fprintf(out, "reserved:               %d\n", s.Reserved)
	fmt.Fprintf(out, "maintenance:            %d\n", s.Maintenance)
	fmt.Fprintf(out, "needs maintenance soon: %d\n", s.NeedsMaintenanceSoon)
	return nil
}

func runFleetExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	vehicles, err := st.Vehicles().FindAll(ctx, store.Filter{})
	if err != nil {
		return err
	}
	switch exportFormat {
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), vehicles)
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), vehicles)
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
}
