package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-sync/internal/config"
	"github.com/i474232898/weather-sync/internal/store"
	"github.com/i474232898/weather-sync/internal/weather"
)

func newOnceCmd() *cobra.Command {
	var (
		query    string
		unitFlag string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Resolve a location, fetch once and print the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if unitFlag != "" {
				unit, err := weather.ParseUnit(unitFlag)
				if err != nil {
					return err
				}
				cfg.DefaultUnit = unit
			}

			sched := buildEngine(cfg)
			defer sched.Shutdown()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if strings.TrimSpace(query) != "" {
				err = sched.Search(ctx, query)
			} else {
				err = sched.Start(ctx, cfg.Fallback(), cfg.FallbackName)
			}
			if err != nil {
				return err
			}

			return printState(cmd.OutOrStdout(), sched.State(), asJSON)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Place to search instead of geolocating")
	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "Temperature unit (C or F)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full state as JSON")
	return cmd
}

func printState(w io.Writer, st store.SyncState, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	if st.Snapshot == nil {
		return fmt.Errorf("no weather data")
	}

	s := st.Snapshot
	fmt.Fprintf(w, "%s: %d°%s (feels like %d°), %s\n", s.PlaceName, s.Temperature, s.Unit, s.FeelsLike, s.Condition.Description)
	fmt.Fprintf(w, "humidity %d%%, wind %.1f m/s\n", s.Humidity, s.WindSpeed)
	for _, d := range s.Forecast {
		fmt.Fprintf(w, "  %-10s %4d° / %4d°  %s\n", d.DayLabel, d.TempMax, d.TempMin, d.Kind)
	}
	return nil
}
