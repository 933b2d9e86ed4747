package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/wharflab/fnlint/internal/engine"
	"github.com/wharflab/fnlint/internal/rules"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List the available rules",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output full rule metadata (messages, schema, defaults) as JSON",
			},
			&cli.BoolFlag{
				Name:  "config-schema",
				Usage: "Output the JSON Schema of .fnlint.toml, including every rule's options",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			reg, errs := loadRegistry()
			w := cmd.Root().Writer
			var err error
			switch {
			case cmd.Bool("config-schema"):
				err = writeConfigSchema(w, reg)
			case cmd.Bool("json"):
				err = writeRulesJSON(w, reg.All())
			default:
				err = writeRulesTable(w, reg.All())
			}
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				return cli.Exit("", ExitConfigError)
			}
			return nil
		},
	}
}

func writeConfigSchema(w io.Writer, reg *rules.Registry) error {
	fragment, err := engine.ConfigSchema(reg)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fragment)
}

// ruleInfo is one entry of `rules --json`.
type ruleInfo struct {
	Name string `json:"name"`
	rules.Meta
	Defaults any `json:"defaults"`
}

func writeRulesJSON(w io.Writer, all []*rules.Rule) error {
	infos := make([]ruleInfo, 0, len(all))
	for _, r := range all {
		infos = append(infos, ruleInfo{Name: r.Name(), Meta: r.Meta(), Defaults: r.DefaultOptions().Value()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}

func writeRulesTable(w io.Writer, all []*rules.Rule) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RULE", "DEFAULT", "FIXABLE", "CATEGORY", "DESCRIPTION")
	for _, r := range all {
		meta := r.Meta()
		fixable := "-"
		if meta.Fixable != "" {
			fixable = string(meta.Fixable)
		}
		t.Row(r.Name(), meta.Docs.Recommended.String(), fixable, meta.Docs.Category, meta.Docs.Description)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
