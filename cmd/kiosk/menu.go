package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-kiosk/pkg/store"
)

func newMenuCmd(root *rootFlags) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Print the menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			if asYAML {
				return catalog.Encode(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), catalog.Prompt())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the menu as a loadable YAML file")
	return cmd
}

func newHistoryCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "List saved conversations, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			st, err := store.New(cfg.Store.Dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				names, err := st.List()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			conv, err := st.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(conv)
		},
	}
	return cmd
}
