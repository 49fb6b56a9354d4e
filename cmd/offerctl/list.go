package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/spf13/cobra"
)

// stateFlags are the listing state flags shared by list and browse
type stateFlags struct {
	link      string
	filters   []string
	search    string
	page      int
	limit     int
	sortBy    string
	sortOrder string
}

func (flags *stateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.link, "url", "", "Restore the listing state from a shared link")
	cmd.Flags().StringArrayVarP(&flags.filters, "filter", "f", nil, "Filter as key=value; an empty value removes the filter (repeatable)")
	cmd.Flags().StringVarP(&flags.search, "search", "s", "", "Free-text search")
	cmd.Flags().IntVarP(&flags.page, "page", "p", 1, "Page to show")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", listing.DefaultLimit, "Items per page")
	cmd.Flags().StringVar(&flags.sortBy, "sort", "", "Field to sort by")
	cmd.Flags().StringVar(&flags.sortOrder, "order", "", "Sort order (asc or desc)")
}

// overlay writes the explicitly set flags over the query of the address
func (flags *stateFlags) overlay(cmd *cobra.Command, address *listing.MemoryAddress) error {
	values := address.Values()
	for _, raw := range flags.filters {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || listing.IsReserved(key) {
			return fmt.Errorf("invalid filter %q: expected key=value", raw)
		}
		if value == "" {
			values.Del(key)
		} else {
			values.Set(key, value)
		}
	}

	changed := cmd.Flags().Changed
	if changed("search") {
		setOrDelete(values, listing.ParamSearch, flags.search)
	}
	if changed("page") {
		values.Set(listing.ParamPage, strconv.Itoa(flags.page))
	}
	if changed("limit") {
		values.Set(listing.ParamLimit, strconv.Itoa(flags.limit))
	}
	if changed("sort") {
		setOrDelete(values, listing.ParamSortBy, flags.sortBy)
	}
	if changed("order") {
		if flags.sortOrder != "" && !listing.SortOrder(flags.sortOrder).Valid() {
			return fmt.Errorf("invalid sort order %q: expected asc or desc", flags.sortOrder)
		}
		setOrDelete(values, listing.ParamSortOrder, flags.sortOrder)
	}
	address.Replace(values)
	return nil
}

func setOrDelete(values url.Values, key, value string) {
	if value == "" {
		values.Del(key)
		return
	}
	values.Set(key, value)
}

func listCmd(opts *globalOptions) *cobra.Command {
	flags := &stateFlags{}
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:       "list (offers|universities)",
		Short:     "Print one page of a listing",
		Example:   "  offerctl list offers -f category=Master -f scholarship=true --sort tuition --order asc",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"offers", "universities"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			switch args[0] {
			case "offers":
				return runList(ctx, cmd, opts, flags, offers)
			default:
				return runList(ctx, cmd, opts, flags, universities)
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time to wait for the page")
	return cmd
}

func runList[T any](ctx context.Context, cmd *cobra.Command, opts *globalOptions, flags *stateFlags, res resource[T]) error {
	api, err := opts.client()
	if err != nil {
		return err
	}
	address, err := resolveAddress(opts.apiURL, res.path, flags.link)
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	if err := flags.overlay(cmd, address); err != nil {
		return err
	}

	sess, err := openSession(res, api, address, -1, opts.logger())
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.listing.Wait(ctx); err != nil {
		return err
	}
	view := sess.listing.Snapshot()
	if view.IsError {
		return view.Err
	}
	printPage(cmd.OutOrStdout(), res, view, address)
	return nil
}

func printPage[T any](out io.Writer, res resource[T], view listing.View[T], address *listing.MemoryAddress) {
	render(out, res, view)
	fmt.Fprintf(out, "link: %s\n", address)
}
