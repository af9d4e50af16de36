package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mpetrov/tempo/internal/models"
	"github.com/mpetrov/tempo/internal/output"
)

// routineFile is the YAML shape accepted by `tempo routine import`.
type routineFile struct {
	Routines []struct {
		Name  string `yaml:"name"`
		Type  string `yaml:"type"`
		Items []struct {
			Activity string `yaml:"activity"`
			Minutes  int    `yaml:"minutes"`
			At       string `yaml:"at"`
		} `yaml:"items"`
	} `yaml:"routines"`
}

var routineImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import routine definitions from a YAML file",
	Long: `Import routines from a YAML file:

  routines:
    - name: Morning
      type: morning
      items:
        - activity: Coffee
          minutes: 5
          at: "07:00"
        - activity: Journal
          minutes: 10

Referenced activities must already exist.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return routineImportRun(args[0])
	},
}

func routineImportRun(path string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var file routineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Routines) == 0 {
		return fmt.Errorf("%s defines no routines", path)
	}

	imported := 0
	for _, def := range file.Routines {
		if def.Name == "" {
			return fmt.Errorf("%s: routine without a name", path)
		}

		r := &models.Routine{
			Name: def.Name,
			Type: models.RoutineType(def.Type),
		}
		for i, item := range def.Items {
			activity, err := dataStore.GetActivityByName(ctx, item.Activity)
			if err != nil {
				return fmt.Errorf("routine %s: %w", def.Name, err)
			}
			r.Items = append(r.Items, &models.RoutineItem{
				ActivityID:              activity.ID,
				ExpectedDurationMinutes: item.Minutes,
				ScheduledTime:           item.At,
				DisplayOrder:            i,
			})
		}

		if err := s.CreateRoutine(ctx, r); err != nil {
			return fmt.Errorf("routine %s: %w", def.Name, err)
		}
		imported++
		ui.VerboseLog("imported %s (%d items)", def.Name, len(r.Items))
	}

	ui.Success("Imported %d routine(s) from %s", imported, output.Cyan(path))
	return nil
}
