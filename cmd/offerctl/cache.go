package main

import (
	"fmt"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/offer"
	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/university"
	"github.com/spf13/cobra"
)

func cacheCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the query cache of the API",
	}
	cmd.AddCommand(cacheClearCmd(opts))
	return cmd
}

func cacheClearCmd(opts *globalOptions) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached listing results",
		Long: fmt.Sprintf(`Drop cached listing results of the API.

Without --prefix every cached result is dropped. Use "%s:" or "%s:" to drop a single listing.`, offer.QueryKey, university.QueryKey),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := opts.client()
			if err != nil {
				return err
			}
			removed, err := api.ClearCache(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached results\n", removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only drop results whose key starts with this prefix")
	return cmd
}
