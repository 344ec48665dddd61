package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lesion-bot/internal/domain/service"
)

func newRulesCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective risk rule table as YAML",
		Long: `Print the risk thresholds, increments and recommendations used by the scorer.

With --path the file is overlaid onto the built-in defaults and validated first,
so the output is exactly what the bot would load from RISK_RULES_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := service.LoadRiskRules(path)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rules); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "YAML file overlaid onto the default rules")

	return cmd
}
