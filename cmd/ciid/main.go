package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	_ "time/tzdata" // zone database for GPS zone inference on hosts without one

	"ciid-go/internal/app"
	"ciid-go/internal/ciid"
	"ciid-go/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when it does not exist.
func loadConfig() (*config.Config, *app.Defaults, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults.ConfigPath, defaults.BaseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config, applies flag overrides and creates an App.
// The caller must defer a.Close().
func newApp(cmd *cobra.Command, command string, withCatalog bool) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timestamp-digits") {
		digits, _ := flags.GetInt("timestamp-digits")
		cfg.Identifier.TimestampDigits = &digits
	}
	if noHash, _ := flags.GetBool("no-hash"); noHash {
		cfg.Identifier.NoHash = true
	}
	verbose, _ := flags.GetBool("verbose")

	a, err := app.New(cfg, app.Options{
		Command: command,
		Verbose: verbose,
		Catalog: withCatalog,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// closeApp closes a and folds its error into err.
func closeApp(a *app.App, err *error) {
	if cerr := a.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ciid [flags] PATH...",
	Short: "Derive camera image identifiers",
	Long: `Derive a sortable, content-addressed identifier for each photo from its
capture time and a fingerprint of its pixel data.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		recursive, _ := cmd.Flags().GetBool("recursive")
		verifyName, _ := cmd.Flags().GetBool("verify-name")
		renameFile, _ := cmd.Flags().GetBool("rename-file")
		printText, _ := cmd.Flags().GetString("print")

		var tmpl *app.Template
		if cmd.Flags().Changed("print") {
			if tmpl, err = app.ParseTemplate(printText); err != nil {
				return err
			}
		}

		a, err := newApp(cmd, "identify", false)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		stdout := cmd.OutOrStdout()
		return a.Identify(cmd.Context(), args, recursive, func(id *ciid.Identity) error {
			if renameFile {
				newPath, err := a.RenameToIdentifier(id)
				if err != nil {
					return err
				}
				id.Path = newPath
			}
			if verifyName {
				if err := a.VerifyName(id); err != nil {
					return err
				}
			}
			return writeIdentity(stdout, tmpl, id)
		})
	},
}

func writeIdentity(w io.Writer, tmpl *app.Template, id *ciid.Identity) error {
	var err error
	if tmpl != nil {
		_, err = io.WriteString(w, tmpl.Render(id))
	} else {
		_, err = fmt.Fprintln(w, id.Identifier)
	}
	return err
}

// index command
var indexCmd = &cobra.Command{
	Use:   "index PATH...",
	Short: "Record identifiers in the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		recursive, _ := cmd.Flags().GetBool("recursive")

		a, err := newApp(cmd, "index", true)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		count, err := a.Index(cmd.Context(), args, recursive)
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d file(s)\n", count)
		return err
	},
}

// dupes command
var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "List catalogued files with identical pixel data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd, "dupes", true)
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		groups, err := a.Duplicates(cmd.Context())
		if err != nil {
			return err
		}

		stdout := cmd.OutOrStdout()
		if len(groups) == 0 {
			if isTerminal(stdout) {
				fmt.Fprintln(stdout, "No duplicates found.")
			}
			return nil
		}
		return writeDuplicates(stdout, groups, isTerminal(stdout))
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		stdout := cmd.OutOrStdout()
		fmt.Fprintf(stdout, "Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Fprintf(stdout, "Base Dir: %s\n", defaults.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		stdout := cmd.OutOrStdout()
		if _, statErr := os.Stat(defaults.ConfigPath); statErr != nil {
			fmt.Fprintf(stdout, "# %s not found, showing defaults\n", defaults.ConfigPath)
		} else {
			fmt.Fprintf(stdout, "# %s\n", defaults.ConfigPath)
		}

		m := &config.Manager{}
		return m.Write(stdout, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Mirror the log to stderr")

	rootCmd.Flags().Int("timestamp-digits", ciid.DefaultTimestampDigits, "Minimum width of the decimal timestamp segment")
	rootCmd.Flags().Bool("no-hash", false, "Omit the fingerprint segment")
	rootCmd.Flags().String("print", "", "Output template using "+templateHelp())
	rootCmd.Flags().Bool("verify-name", false, "Fail for files not named after their identifier")
	rootCmd.Flags().Bool("rename-file", false, "Rename files to <identifier><ext>")
	rootCmd.Flags().BoolP("recursive", "r", false, "Recurse into directories")

	indexCmd.Flags().Int("timestamp-digits", ciid.DefaultTimestampDigits, "Minimum width of the decimal timestamp segment")
	indexCmd.Flags().Bool("no-hash", false, "Omit the fingerprint segment")
	indexCmd.Flags().BoolP("recursive", "r", false, "Recurse into directories")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(configCmd)
}

func templateHelp() string {
	vars := app.TemplateVariables()
	for i, v := range vars {
		vars[i] = "${" + v + "}"
	}
	return strings.Join(vars, ", ")
}
