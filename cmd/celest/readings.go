package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/celest/internal/app"
	"github.com/okian/celest/internal/domain/model"
	"github.com/okian/celest/pkg/logger"
)

// birthFlags binds the birth data flags shared by the chart readings.
type birthFlags struct {
	birth model.BirthData
	at    string
}

func (f *birthFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.birth.Date, "date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.birth.Time, "time", "", "Local birth time (HH:MM); empty means unknown")
	cmd.Flags().Float64Var(&f.birth.Latitude, "lat", 0, "Birth latitude")
	cmd.Flags().Float64Var(&f.birth.Longitude, "lon", 0, "Birth longitude")
	cmd.Flags().StringVar(&f.birth.Location, "location", "", "IANA zone of the birth date and time")
	cmd.Flags().StringVar(&f.at, "at", "", "Instant to read the sky at (RFC3339); empty means now")
	_ = cmd.MarkFlagRequired("date")
}

func (f *birthFlags) data() model.BirthData {
	b := f.birth
	b.TimeUnknown = b.Time == ""
	return b
}

func parseAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", s, err)
	}
	return at, nil
}

func newReadingService() (*service.Service, error) {
	return service.New(service.WithLogger(logger.Named("service")))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func wheelCmd() *cobra.Command {
	var f birthFlags

	cmd := &cobra.Command{
		Use:   "wheel",
		Short: "Score the eight life sectors for a birth chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, err := parseAt(f.at)
			if err != nil {
				return err
			}
			svc, err := newReadingService()
			if err != nil {
				return err
			}
			reading, err := svc.Wheel(cmd.Context(), f.data(), at)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reading)
		},
	}
	f.register(cmd)
	return cmd
}

func hourCmd() *cobra.Command {
	var (
		lat, lon float64
		at       string
	)

	cmd := &cobra.Command{
		Use:   "hour",
		Short: "Print the ruler of the planetary hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			instant, err := parseAt(at)
			if err != nil {
				return err
			}
			svc, err := newReadingService()
			if err != nil {
				return err
			}
			var latp, lonp *float64
			if cmd.Flags().Changed("lat") {
				latp = &lat
			}
			if cmd.Flags().Changed("lon") {
				lonp = &lon
			}
			reading, err := svc.PlanetaryHour(cmd.Context(), latp, lonp, instant)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reading)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Observer latitude; defaults to the reference location")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Observer longitude; defaults to the reference location")
	cmd.Flags().StringVar(&at, "at", "", "Instant (RFC3339); empty means now")
	return cmd
}

func overlayCmd() *cobra.Command {
	var point, ascendant float64

	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Whole-sign house of a longitude relative to an ascendant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newReadingService()
			if err != nil {
				return err
			}
			house, err := svc.Overlay(point, ascendant)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"point":     point,
				"ascendant": ascendant,
				"house":     house,
			})
		},
	}
	cmd.Flags().Float64Var(&point, "point", 0, "Ecliptic longitude in degrees")
	cmd.Flags().Float64Var(&ascendant, "ascendant", 0, "Ascendant longitude in degrees")
	_ = cmd.MarkFlagRequired("point")
	_ = cmd.MarkFlagRequired("ascendant")
	return cmd
}
