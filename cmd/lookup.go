package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// weatherCmd represents the weather command
var weatherCmd = &cobra.Command{
	Use:   "weather <place>",
	Short: "Show the daily forecast for a place",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWeather,
}

// safetyCmd represents the safety command
var safetyCmd = &cobra.Command{
	Use:   "safety <place>",
	Short: "Show neighborhood safety ratings for a place",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSafety,
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connectivity and show which integrations are enabled",
	RunE:  runTest,
}

var weatherDays int

func init() {
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(safetyCmd)
	rootCmd.AddCommand(testCmd)

	weatherCmd.Flags().IntVarP(&weatherDays, "days", "n", 5, "forecast length in days (1-16)")
}

func runWeather(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	place := strings.Join(args, " ")

	loc, err := geocodeClient.Lookup(ctx, place)
	if err != nil {
		return err
	}

	forecast, err := weatherClient.Forecast(ctx, loc.Latitude, loc.Longitude, weatherDays)
	if err != nil {
		return err
	}

	fmt.Printf("\nForecast for %s:\n", loc.Label())
	for _, day := range forecast.Days {
		fmt.Printf("  %s\n", day.Summary())
	}
	return nil
}

func runSafety(cmd *cobra.Command, args []string) error {
	if safetyClient == nil {
		return fmt.Errorf("safety integration is disabled: set STROLLERSCOUT_SAFETY_CLIENT_ID and STROLLERSCOUT_SAFETY_CLIENT_SECRET")
	}

	ctx := context.Background()
	place := strings.Join(args, " ")

	loc, err := geocodeClient.Lookup(ctx, place)
	if err != nil {
		return err
	}

	ratings := safetyClient.Ratings(ctx, loc.Latitude, loc.Longitude)
	if len(ratings) == 0 {
		fmt.Printf("No safety ratings available for %s.\n", loc.Label())
		return nil
	}

	fmt.Printf("\nNeighborhood safety near %s (0 safest - 100):\n", loc.Label())
	for _, r := range ratings {
		fmt.Printf("  %-30s overall %3d  theft %3d  physical %3d  women %3d\n",
			r.Name, r.Overall, r.Theft, r.PhysicalHarm, r.Women)
	}
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Printf("Testing geocoding at %s...\n", cfg.Geocoding.URL)
	if _, err := geocodeClient.Lookup(ctx, "Paris"); err != nil {
		return fmt.Errorf("geocoding check failed: %w", err)
	}
	fmt.Println("✓ Geocoding reachable")

	fmt.Printf("\nIntegrations:\n")
	fmt.Printf("- Weather: %s\n", cfg.Weather.URL)
	fmt.Printf("- Safety ratings: %s\n", boolToStatus(safetyClient != nil))
	fmt.Printf("- Itinerary generation: %s (model %s)\n", boolToStatus(cfg.OpenAI.APIKey != ""), cfg.OpenAI.Model)

	return nil
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
