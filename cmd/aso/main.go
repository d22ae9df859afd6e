package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"asset-organizer/internal/app"
	"asset-organizer/internal/config"
	"asset-organizer/internal/organizer"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an OrganizerApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "scan", "archive").
func newApp(cmd *cobra.Command, operation string) (*app.OrganizerApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	a, err := app.NewOrganizerApp(cfg, defaults["config_path"], app.Options{
		Operation: operation,
		Verbose:   verbose,
		AssumeYes: assumeYes,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// perform resolves --dry-run against the configured default.
func perform(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("dry-run") {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return !dryRun
	}
	return !cfg.Archive.DryRun
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", organizer.FilterAll, "Only packages in this base category")
	cmd.Flags().String("publisher", organizer.FilterAll, "Only packages from this publisher")
	cmd.Flags().String("unity", organizer.FilterAll, "Only packages for this Unity major.minor version")
	cmd.Flags().StringP("search", "s", "", "Only packages whose title contains this text")
}

func filterFromFlags(cmd *cobra.Command) organizer.Filter {
	category, _ := cmd.Flags().GetString("category")
	publisher, _ := cmd.Flags().GetString("publisher")
	unity, _ := cmd.Flags().GetString("unity")
	search, _ := cmd.Flags().GetString("search")
	return organizer.Filter{Category: category, Publisher: publisher, UnityVersion: unity, Search: search}
}

var rootCmd = &cobra.Command{
	Use:          "aso",
	Short:        "Unity Asset Store package organizer",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"], defaults["app_data_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("AppData Dir:  %s\n", cfg.Unity.AppDataDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("AppData Dir:   %s\n", cfg.Unity.AppDataDir)
		fmt.Printf("Database:      %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Dry Run:       %t\n", cfg.Archive.DryRun)
		fmt.Printf("Custom Dir:    %s\n", cfg.Preferences[organizer.CustomDirectoryKey])
		fmt.Printf("Archive Dir:   %s\n", cfg.Preferences[organizer.BackupDirectoryKey])
		return nil
	},
}

var configSetDirCmd = &cobra.Command{
	Use:   "set-dir LOCATION PATH",
	Short: "Set the custom or archive directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := organizer.ParseLocation(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "SetDirectory")
		if err != nil {
			return err
		}
		defer a.Close()

		dir, err := a.SetDirectory(loc, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s directory: %s\n", loc, dir)
		return nil
	},
}

// paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the directory of each location",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Paths")
		if err != nil {
			return err
		}
		defer a.Close()

		return writePaths(os.Stdout, a.Paths())
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan LOCATION",
	Short: "List the packages in a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		sortSpec, _ := cmd.Flags().GetString("sort")
		keys, err := organizer.ParseSortKeys(sortSpec)
		if err != nil {
			return err
		}
		compare, _ := cmd.Flags().GetBool("compare")

		loc, err := organizer.ParseLocation(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		lib, err := a.Scan(loc, compare)
		if err != nil {
			return err
		}

		records := filterFromFlags(cmd).Apply(lib.Packages())
		organizer.SortBy(records, keys)

		if format != formatTable {
			return writeStructured(os.Stdout, format, records)
		}
		return writeRecords(os.Stdout, lib, records, compare)
	},
}

// filters command
var filtersCmd = &cobra.Command{
	Use:   "filters LOCATION",
	Short: "List the filter values present in a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := organizer.ParseLocation(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "FilterOptions")
		if err != nil {
			return err
		}
		defer a.Close()

		choices, err := a.FilterOptions(loc)
		if err != nil {
			return err
		}
		return writeFilterChoices(os.Stdout, choices)
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status LOCATION PACKAGE_ID",
	Short: "Explain how a package matches against the archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		loc, err := organizer.ParseLocation(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid package id %q: %w", args[1], err)
		}

		a, err := newApp(cmd, "Status")
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.Status(loc, id)
		if err != nil {
			return err
		}

		if format != formatTable {
			return writeStructured(os.Stdout, format, reports)
		}
		return writeStatus(os.Stdout, reports)
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive LOCATION",
	Short: "Copy packages that are not yet archived into the archive directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := organizer.ParseLocation(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Archive")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Archive(loc, filterFromFlags(cmd), perform(cmd, a.Config()))
		if err != nil {
			return fmt.Errorf("archive failed: %w", err)
		}

		if err := writeArchiveReport(os.Stdout, report); err != nil {
			return err
		}
		if n := report.Count(organizer.DecisionFailed); n > 0 {
			return fmt.Errorf("%d package(s) failed to archive", n)
		}
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore LOCATION FILE",
	Short: "Copy a package from the custom or archive directory back into the Asset Store directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := organizer.ParseLocation(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Restore(loc, args[1], perform(cmd, a.Config()))
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		switch result.Decision {
		case organizer.DecisionRestored:
			fmt.Printf("Restored %s to %s\n", result.Record.Title, result.Destination)
		case organizer.DecisionSimulated:
			fmt.Printf("Would restore %s to %s\n", result.Record.Title, result.Destination)
		default:
			fmt.Println("Restore cancelled.")
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View archive and restore runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "History")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		return writeRuns(os.Stdout, runs)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "View the packages processed by a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "History")
		if err != nil {
			return err
		}
		defer a.Close()

		run, entries, err := a.HistoryRun(args[0])
		if err != nil {
			return err
		}
		return writeRunEntries(os.Stdout, run, entries)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to confirmation prompts")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetDirCmd)

	// history subcommands
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")

	scanCmd.Flags().StringP("format", "f", formatTable, "Output format: table, json, or yaml")
	scanCmd.Flags().String("sort", "title", "Sort columns, e.g. size:desc,title")
	scanCmd.Flags().BoolP("compare", "c", false, "Mark packages already present in the archive")
	addFilterFlags(scanCmd)

	statusCmd.Flags().StringP("format", "f", formatTable, "Output format: table, json, or yaml")

	archiveCmd.Flags().BoolP("dry-run", "n", false, "Report what would be copied without copying")
	addFilterFlags(archiveCmd)

	restoreCmd.Flags().BoolP("dry-run", "n", false, "Ask for confirmation but do not copy")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
}
