package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitwit/paylink/types"
)

var showCmd = &cobra.Command{
	Use:   "show <link>",
	Short: "Show what a payment link asks for",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, stop, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer stop()

		desc, err := p.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, desc)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Link:        %s\n", desc.ID)
		if desc.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", desc.Description)
		}
		if desc.HasFixedAmount() {
			fmt.Fprintf(out, "Amount:      %s (fixed)\n", desc.FixedAmount)
		} else {
			fmt.Fprintln(out, "Amount:      chosen by payer")
		}
		if desc.PayTo != "" {
			fmt.Fprintf(out, "Pay to:      %s\n", desc.PayTo)
		}
		for _, f := range desc.CustomFields {
			fmt.Fprintf(out, "Field:       %s\n", describeField(f))
		}

		fmt.Fprintln(out, "Networks:")
		for _, c := range p.Chains().Supported() {
			token := "no settlement token"
			if c.Token != nil {
				token = c.Token.Symbol
			}
			fmt.Fprintf(out, "  %-20s %d (%s)\n", c.Name, c.ChainID, token)
		}
		return nil
	},
}

func describeField(f types.CustomFieldDef) string {
	s := f.Name + " [" + string(f.Kind) + "]"
	if f.Required {
		s += " required"
	}
	if len(f.Options) > 0 {
		s += " one of: " + strings.Join(f.Options, ", ")
	}
	return s
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
