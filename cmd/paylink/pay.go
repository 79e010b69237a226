package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitwit/paylink/executor"
	"github.com/vitwit/paylink/receipt"
	"github.com/vitwit/paylink/types"
	"github.com/vitwit/paylink/utils"
)

var (
	payRail   string
	payAmount string
	payFields []string
	payName   string
	payEmail  string
	payChain  uint64
)

var payCmd = &cobra.Command{
	Use:   "pay <link>",
	Short: "Pay a payment link",
	Long: `Pay a payment link on-chain through the configured wallet, or log the
payment with the backend.

Examples:
  paylink pay coffee --amount 5 --field table=7
  paylink pay invoice-42 --rail backend --name Alice --email a@x.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, stop, err := open(ctx)
		if err != nil {
			return err
		}
		defer stop()

		e, err := p.Open(ctx, args[0])
		if err != nil {
			return err
		}
		if err := fill(e); err != nil {
			return err
		}
		if err := e.Proceed(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if e.Form().Snapshot().Rail == types.RailOnChain {
			outcome, err := e.ConnectWallet(ctx)
			if err != nil {
				return err
			}
			if s, err := p.Wallet().Signer(ctx); err == nil {
				fmt.Fprintf(out, "Wallet %s (%s)\n", utils.ShortAddress(s.Address().Hex()), outcome)
			}
			if payChain != 0 {
				if err := e.SelectNetwork(ctx, payChain); err != nil {
					return err
				}
			}
			if fee, err := e.EstimateFee(ctx); err == nil {
				fmt.Fprintf(out, "Estimated network fee: %s %s\n", fee.Fee, fee.Symbol)
			}
		}

		a, err := e.Pay(ctx)
		e.Wait()
		if a == nil {
			return err
		}

		v := receipt.Present(a)
		if jsonOutput {
			if perr := printJSON(cmd, v); perr != nil {
				return perr
			}
		} else {
			printView(cmd, v)
		}
		return err
	},
}

func init() {
	payCmd.Flags().StringVar(&payRail, "rail", string(types.RailOnChain), "settlement rail: onchain or backend")
	payCmd.Flags().StringVar(&payAmount, "amount", "", "amount to pay when the link has no fixed amount")
	payCmd.Flags().StringArrayVar(&payFields, "field", nil, "custom field as name=value (repeatable)")
	payCmd.Flags().StringVar(&payName, "name", "", "payer name")
	payCmd.Flags().StringVar(&payEmail, "email", "", "payer email")
	payCmd.Flags().Uint64Var(&payChain, "chain", 0, "chain id for the on-chain rail (defaults to the configured chain)")
}

func fill(e *executor.Executor) error {
	f := e.Form()
	if err := f.SetRail(types.Rail(payRail)); err != nil {
		return err
	}
	if payAmount != "" && !e.Descriptor().HasFixedAmount() {
		if err := f.SetAmount(payAmount); err != nil {
			return err
		}
	}
	for _, kv := range payFields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return types.Errorf(types.ErrValidation, "field %q must be name=value", kv)
		}
		if err := f.SetField(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	if payName != "" || payEmail != "" {
		if err := f.SetPayer(payName, payEmail); err != nil {
			return err
		}
	}
	if payChain != 0 && types.Rail(payRail) == types.RailBackend {
		return types.Errorf(types.ErrValidation, "--chain only applies to the on-chain rail")
	}
	return nil
}

func printView(cmd *cobra.Command, v receipt.View) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, v.Headline)
	if !v.Success {
		fmt.Fprintf(out, "  %s: %s\n", v.Code, v.Message)
		if v.Retryable {
			fmt.Fprintln(out, "  You can try again.")
		}
		return
	}
	if v.Rail == types.RailOnChain {
		fmt.Fprintf(out, "  Transaction: %s\n", v.Reference)
		if v.ExplorerURL != "" {
			fmt.Fprintf(out, "  Explorer:    %s\n", v.ExplorerURL)
		}
		fmt.Fprintf(out, "  Amount:      %s %s on %s\n", v.Amount, v.Token, v.Network)
	} else {
		fmt.Fprintf(out, "  Receipt ID:  %s\n", v.Reference)
		fmt.Fprintf(out, "  Amount:      %s\n", v.Amount)
	}
	if v.PayerName != "" {
		fmt.Fprintf(out, "  Payer:       %s\n", v.PayerName)
	}
	for _, f := range v.CustomFields {
		fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Value)
	}
}
