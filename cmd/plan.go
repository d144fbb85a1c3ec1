package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prasadnitish/StrollerScout-sub001/filter"
	"github.com/prasadnitish/StrollerScout-sub001/planner"
	"github.com/prasadnitish/StrollerScout-sub001/trip"
)

var (
	planDays   int
	kidAges    []int
	filterExpr string
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan <destination>",
	Short: "Generate a full trip plan for a destination",
	Long: `Generate a complete family trip plan: resolved location, daily weather,
neighborhood safety ratings (when configured), a day-by-day itinerary and a
packing list.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().IntVarP(&planDays, "days", "n", 5, "trip length in days (1-16)")
	planCmd.Flags().IntSliceVar(&kidAges, "ages", nil, "ages of the children, e.g. --ages 2,5")
	planCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", `activity filter, e.g. 'indoor and free'`)
}

func runPlan(cmd *cobra.Command, args []string) error {
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("itinerary generation requires an OpenAI API key (set OPENAI_API_KEY)")
	}

	var match filter.Match
	if filterExpr != "" {
		var err error
		match, err = filter.NewCompiler().Compile(filterExpr)
		if err != nil {
			return err
		}
	}

	destination := strings.Join(args, " ")
	logger.Info().Str("destination", destination).Int("days", planDays).Msg("Planning trip")

	plan, err := tripService.BuildPlan(context.Background(), trip.Request{
		Destination: destination,
		Days:        planDays,
		KidAges:     kidAges,
	})
	if err != nil {
		return err
	}

	renderPlan(plan, match)
	return nil
}

func renderPlan(plan *trip.Plan, match filter.Match) {
	fmt.Printf("\nTrip plan for %s\n", plan.Location.Label())
	fmt.Println(strings.Repeat("=", 60))

	if plan.Forecast != nil && len(plan.Forecast.Days) > 0 {
		fmt.Println("\nWeather:")
		for _, day := range plan.Forecast.Days {
			fmt.Printf("  %s\n", day.Summary())
		}
	}

	if len(plan.Ratings) > 0 {
		fmt.Println("\nNeighborhood safety (0 safest - 100):")
		for _, r := range plan.Ratings {
			fmt.Printf("  %-30s overall %3d  theft %3d  physical %3d\n",
				r.Name, r.Overall, r.Theft, r.PhysicalHarm)
		}
	}

	if plan.Itinerary != nil {
		fmt.Println("\nItinerary:")
		for _, day := range plan.Itinerary.Days {
			fmt.Printf("\n  Day %d: %s\n", day.Day, day.Theme)
			for _, activity := range day.Activities {
				if match != nil && !match(activity) {
					continue
				}
				fmt.Printf("    • %s", activity.Name)
				if activity.Indoor {
					fmt.Printf(" [indoor]")
				}
				if activity.Free {
					fmt.Printf(" [free]")
				}
				fmt.Println()
				if activity.Description != "" {
					fmt.Printf("      %s\n", activity.Description)
				}
			}
		}
	}

	if plan.Packing != nil {
		fmt.Println("\nPacking list:")
		for _, category := range packingCategories(plan.Packing) {
			fmt.Printf("  %s:\n", category)
			for _, item := range plan.Packing.Items {
				if item.Category != category {
					continue
				}
				fmt.Printf("    ☐ %s", item.Name)
				if item.Reason != "" {
					fmt.Printf(" (%s)", item.Reason)
				}
				fmt.Println()
			}
		}
	}
}

// packingCategories returns the distinct categories in first-seen order.
func packingCategories(list *planner.PackingList) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, item := range list.Items {
		if !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	return categories
}
