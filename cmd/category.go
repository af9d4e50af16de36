package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/output"
)

var categoryColor string

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return categoryListRun()
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return categoryAddRun(args[0])
	},
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return categoryListRun()
	},
}

func init() {
	categoryAddCmd.Flags().StringVar(&categoryColor, "color", "", "Display color (hex)")

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	rootCmd.AddCommand(categoryCmd)
}

func categoryAddRun(name string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	c := &models.Category{Name: name, Color: categoryColor}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		return err
	}
	ui.Success("Added category %s", output.Cyan(name))
	return nil
}

func categoryListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	categories, err := s.ListCategories(context.Background())
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		ui.Info("No categories.")
		return nil
	}

	table := ui.Table([]string{"Name", "Color"})
	for _, c := range categories {
		_ = table.Append([]string{c.Name, c.Color})
	}
	return table.Render()
}
