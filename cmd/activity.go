package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/output"
)

var (
	activityCategory string
	activityExpected int
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Manage activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return activityListRun()
	},
}

var activityAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return activityAddRun(args[0])
	},
}

var activityListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return activityListRun()
	},
}

func init() {
	activityAddCmd.Flags().StringVar(&activityCategory, "category", "", "Category name")
	activityAddCmd.Flags().IntVar(&activityExpected, "expected", 0, "Default expected duration in minutes")

	activityCmd.AddCommand(activityAddCmd)
	activityCmd.AddCommand(activityListCmd)
	rootCmd.AddCommand(activityCmd)
}

func activityAddRun(name string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	a := &models.Activity{
		Name:                   name,
		DefaultExpectedMinutes: activityExpected,
	}
	if activityCategory != "" {
		cat, err := s.GetCategoryByName(ctx, activityCategory)
		if err != nil {
			return err
		}
		a.CategoryID = cat.ID
	}

	if err := s.CreateActivity(ctx, a); err != nil {
		return err
	}
	ui.Success("Added activity %s", output.Cyan(name))
	return nil
}

func activityListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	activities, err := s.ListActivities(context.Background())
	if err != nil {
		return err
	}
	if len(activities) == 0 {
		ui.Info("No activities. Use 'tempo activity add <name>' to get started.")
		return nil
	}

	table := ui.Table([]string{"Name", "Category", "Default", "Used"})
	for _, a := range activities {
		def := "-"
		if a.DefaultExpectedMinutes > 0 {
			def = fmt.Sprintf("%d min", a.DefaultExpectedMinutes)
		}
		_ = table.Append([]string{a.Name, a.CategoryName, def, fmt.Sprintf("%d", a.UsageCount)})
	}
	return table.Render()
}
