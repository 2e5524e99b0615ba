package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"mediastream/internal/catalog"
	"mediastream/internal/logging"
	"mediastream/internal/media"
	"mediastream/internal/startup"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const minPasswordLength = 6

// options holds the persistent flags shared by every command.
type options struct {
	librariesFile string
	mediaRoot     string
	verbose       bool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "mediactl",
		Short:        "Inspect media libraries and prepare server credentials",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.verbose {
				logging.SetLevel(logging.LevelDebug)
			} else {
				logging.SetLevel(logging.LevelWarn)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.librariesFile, "libraries", envOr("LIBRARIES_FILE", "config.json"), "Libraries file (.json, .yaml, .toml)")
	root.PersistentFlags().StringVar(&opts.mediaRoot, "media-root", envOr("MEDIA_ROOT", "./media"), "Parent directory of the default libraries")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging to stderr")

	root.AddCommand(
		newLibrariesCmd(opts),
		newScanCmd(opts),
		newSearchCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

func (o *options) catalog() (*catalog.Service, error) {
	set, err := startup.LoadLibrarySet(o.librariesFile, o.mediaRoot)
	if err != nil {
		return nil, err
	}
	return catalog.New(set, media.NewScanner()), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLibrariesCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "List configured libraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := startup.LoadLibrarySet(opts.librariesFile, opts.mediaRoot)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), set.Summaries())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPOLICY\tPATH")
			for _, lib := range set.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", lib.ID, lib.DisplayName, lib.Policy, lib.RootPath)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the API representation")
	return cmd
}

func newScanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan TYPE",
		Short: "Scan one library and print its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := startup.LoadLibrarySet(opts.librariesFile, opts.mediaRoot)
			if err != nil {
				return err
			}

			lib, ok := set.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", catalog.ErrLibraryNotFound, args[0])
			}

			res, err := media.NewScanner().Scan(cmd.Context(), lib)
			if err != nil {
				return err
			}
			for _, f := range res.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", f)
			}
			return writeJSON(cmd.OutOrStdout(), res.Entries)
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search every library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results, err := cat.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
}

var errPasswordMismatch = errors.New("passwords do not match")

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hashpw",
		Short: "Print a bcrypt hash for AUTH_PASSWORD_HASH",
		Long: `Reads a password from the terminal (twice, without echo) or, when stdin
is not a terminal, from the first line of stdin, and prints its bcrypt hash.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(password) < minPasswordLength {
				return fmt.Errorf("password must be at least %d characters", minPasswordLength)
			}

			hash, err := bcrypt.GenerateFromPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

// readPassword prompts on the terminal when in is one, and otherwise reads
// a single line.
func readPassword(in io.Reader, prompt io.Writer) ([]byte, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}

		fmt.Fprint(prompt, "Confirm Password: ")
		confirm, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}

		if !bytes.Equal(password, confirm) {
			return nil, errPasswordMismatch
		}
		return password, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
