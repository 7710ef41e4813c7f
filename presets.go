package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/validate"
)

func newPresetManager(settings *config.Settings) (*config.Manager, error) {
	presets, err := config.NewManager(settings.PresetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset manager: %w", err)
	}
	return presets, nil
}

func presetsListAction(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	presets, err := newPresetManager(settings)
	if err != nil {
		return err
	}

	list, err := presets.ListPresets()
	if err != nil {
		return err
	}
	printPresets(os.Stdout, list, presets.GetDefault().Name)
	return nil
}

func printPresets(w io.Writer, presets []*service.PresetInfo, defaultName string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBOARD\tPAIRS\tSOURCE\tDESCRIPTION")
	for _, p := range presets {
		source := "built-in"
		if p.Filename != "" {
			source = p.Filename
		}
		id := p.PresetID
		if p.Name == defaultName || p.PresetID == defaultName {
			id += " *"
		}
		fmt.Fprintf(tw, "%s\t%dx%d\t%d\t%s\t%s\n", id, p.Rows, p.Cols, p.Pairs, source, p.Description)
	}
	tw.Flush()
}

func presetsValidateAction(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	dir := settings.PresetDir
	if cmd.Args().Len() > 0 {
		dir = cmd.Args().First()
	}

	results, err := validate.Dir(dir)
	if err != nil {
		return err
	}
	if !printValidation(os.Stdout, dir, results) {
		return cli.Exit("", 1)
	}
	return nil
}

// printValidation writes a report and returns whether every file is valid
func printValidation(w io.Writer, dir string, results []validate.Result) bool {
	fmt.Fprintf(w, "Validating %d preset files in %s\n", len(results), dir)
	for _, r := range results {
		status := "✓ VALID"
		if !r.Valid {
			status = "✗ INVALID"
		}
		fmt.Fprintf(w, "\n%s: %s\n", r.File, status)
		for _, msg := range r.Messages {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}

	ok := validate.AllValid(results)
	if ok {
		fmt.Fprintln(w, "\nAll presets are valid.")
	} else {
		fmt.Fprintln(w, "\nSome presets are invalid.")
	}
	return ok
}
