package main

import (
	"fmt"
	"os"

	"github.com/komo1iddin/advanced-next-system-offer-sub001/internal/client"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalOptions holds the flags shared by every command
type globalOptions struct {
	apiURL  string
	verbose bool
}

func (opts *globalOptions) client() (*client.Client, error) {
	return client.New(opts.apiURL, nil)
}

func (opts *globalOptions) logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "offerctl",
		Short: "Browse study offers and universities",
		Long: `offerctl browses the offer and university listings of an offers API.

Listings are filtered, sorted and paginated the same way the web interface does it,
and every listing state can be shared as a link and restored with --url.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("OFFERS_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8081"
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", defaultURL, "Base URL of the offers API")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug information to stderr")

	cmd.AddCommand(
		listCmd(opts),
		browseCmd(opts),
		cacheCmd(opts),
	)
	return cmd
}
