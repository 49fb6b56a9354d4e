package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/listing"
	"github.com/spf13/cobra"
)

const browseHelp = `commands:
  filter <key>=<value>   set a filter, an empty value removes it
  search <text>          search as you type, applied after the debounce delay
  page <n> | next | prev select a page
  limit <n>              items per page
  sort <field> [asc|desc] sort, repeating the current field toggles the order
  reset                  restore the default filters, search and sort
  refresh                fetch the current page again
  link                   print the link of the current listing
  quit                   leave`

func browseCmd(opts *globalOptions) *cobra.Command {
	flags := &stateFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:       "browse (offers|universities)",
		Short:     "Browse a listing interactively",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"offers", "universities"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "offers":
				return runBrowse(cmd, opts, flags, debounce, offers)
			default:
				return runBrowse(cmd, opts, flags, debounce, universities)
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", listing.DefaultSearchDebounce, "Delay before search input is applied")
	return cmd
}

// console serializes the output of the prompt and of settled fetches
type console struct {
	mtx sync.Mutex
	out io.Writer
}

func (c *console) printf(format string, args ...any) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) do(fn func(out io.Writer)) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	fn(c.out)
}

func runBrowse[T any](cmd *cobra.Command, opts *globalOptions, flags *stateFlags, debounce time.Duration, res resource[T]) error {
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

	sess, err := openSession(res, api, address, debounce, opts.logger())
	if err != nil {
		return err
	}
	defer sess.Close()

	term := &console{out: cmd.OutOrStdout()}
	unsubscribe := sess.listing.Subscribe(func(view listing.View[T]) {
		if view.IsLoading {
			return
		}
		term.do(func(out io.Writer) {
			fmt.Fprintln(out)
			render(out, res, view)
		})
	})
	defer unsubscribe()

	if err := sess.listing.Wait(cmd.Context()); err != nil {
		term.printf("the first fetch failed: %s\n", err)
	} else {
		term.do(func(out io.Writer) { render(out, res, sess.listing.Snapshot()) })
	}
	term.printf("%s\n", browseHelp)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		term.printf("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := execute(cmd.Context(), sess, term, scanner.Text())
		if err != nil {
			term.printf("%s\n", err)
		}
		if quit {
			return nil
		}
	}
}

// execute runs one browse command against the listing
func execute[T any](ctx context.Context, sess *session[T], term *console, line string) (bool, error) {
	command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	lst := sess.listing

	switch command {
	case "":
	case "filter":
		key, value, ok := strings.Cut(rest, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return false, fmt.Errorf("usage: filter <key>=<value>")
		}
		if value = strings.TrimSpace(value); value == "" {
			lst.SetFilter(key, nil)
		} else {
			lst.SetFilter(key, listing.ParseValue(value))
		}
	case "search":
		lst.SetSearch(rest)
	case "page":
		page, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("usage: page <n>")
		}
		lst.SetPage(page)
	case "next":
		if !lst.HasNextPage() {
			return false, fmt.Errorf("already on the last page")
		}
		lst.SetPage(lst.Page() + 1)
	case "prev":
		if !lst.HasPrevPage() {
			return false, fmt.Errorf("already on the first page")
		}
		lst.SetPage(lst.Page() - 1)
	case "limit":
		limit, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("usage: limit <n>")
		}
		lst.SetLimit(limit)
	case "sort":
		field, order, _ := strings.Cut(rest, " ")
		if field == "" {
			return false, fmt.Errorf("usage: sort <field> [asc|desc]")
		}
		lst.SetSort(field, listing.ParseSortOrder(strings.TrimSpace(order)))
	case "reset":
		lst.ResetFilters()
	case "refresh":
		// the subscription renders the outcome
		_ = lst.Refetch(ctx)
	case "link":
		lst.FlushSearch()
		term.printf("%s\n", sess.address)
	case "help":
		term.printf("%s\n", browseHelp)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type help for a list of commands", command)
	}
	return false, nil
}
