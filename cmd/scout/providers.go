package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kbukum/scoutkit/provider"
	"github.com/kbukum/scoutkit/util"
)

// newProvidersCmd creates the "providers" command: list registered
// providers, their configured credentials, and their models.
func newProvidersCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers and their models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return runProviders(cmd, cfg)
		},
	}
}

func runProviders(cmd *cobra.Command, cfg *appConfig) error {
	names := provider.Names()
	sort.Strings(names)

	for _, name := range names {
		settings := settingsFor(cfg, name, "")
		fmt.Fprintf(cmd.OutOrStdout(), "%s", name)
		if settings.APIKey != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (key: %s)", util.MaskSecret(settings.APIKey, 4))
		}
		fmt.Fprintln(cmd.OutOrStdout())

		p, err := provider.Open(name, settings)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "  unavailable: %v\n", err)
			continue
		}
		for _, model := range p.Models() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s/%s\n", name, model)
		}
	}
	return nil
}
