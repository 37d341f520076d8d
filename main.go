// Package main provides the entry point for the FlipBook CLI application.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/flipbook/internal/book"
	"github.com/dgnsrekt/flipbook/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	catalogPath string
	bookQuery   string
	mouse       bool
	voice       string
	model       string
	noNarration bool

	rootCmd = &cobra.Command{
		Use:   "flipbook [BOOK|DIR]",
		Short: "Read books in the terminal, one page turn at a time",
		Long: paragraph(
			fmt.Sprintf("\nRead books in the terminal and %s.", keyword("have them read aloud")),
		),
		Example: paragraph("flipbook\nflipbook ~/books\nflipbook --book \"invisible cities\"\nflipbook novel.epub"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateOptions()
		},
		RunE: execute,
	}
)

func validateOptions() error {
	// grab config values from Viper
	catalogPath = expandPath(viper.GetString("catalog"))
	mouse = viper.GetBool("mouse")
	voice = viper.GetString("gemini.voice")
	model = viper.GetString("gemini.model")

	if rpm := viper.GetInt("gemini.requests_per_minute"); rpm < 0 {
		return fmt.Errorf("gemini requests_per_minute must not be negative, got %d", rpm)
	}
	if d := viper.GetDuration("gemini.timeout"); d < 0 {
		return fmt.Errorf("gemini timeout must not be negative, got %s", d)
	}
	if size := viper.GetInt("cache.max_size"); size < 1 || size > 10000 {
		return fmt.Errorf("cache max_size must be between 1 and 10000 MB, got %d", size)
	}
	return nil
}

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func execute(_ *cobra.Command, args []string) error {
	path := catalogPath
	query := bookQuery

	// A positional argument is a catalog file or directory when it exists
	// on disk, otherwise a book to open.
	if len(args) == 1 {
		if _, err := os.Stat(args[0]); err == nil {
			path = args[0]
		} else if query == "" {
			query = args[0]
		}
	}

	if path != "" {
		p, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("unable to get absolute path: %w", err)
		}
		path = p
	}

	catalog, err := loadCatalog(path)
	if err != nil {
		return err
	}
	return runTUI(catalog, path, query)
}

// loadCatalog reads the catalog at path, or the bundled one when path is
// empty.
func loadCatalog(path string) (*book.Catalog, error) {
	if path == "" {
		return book.DefaultCatalog(), nil
	}
	c, err := ui.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load catalog: %w", err)
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("no books found in %s", path)
	}
	return c, nil
}

func runTUI(catalog *book.Catalog, path, query string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or auto if unset
	if err := validateStyle(cfg.GlamourStyle); err != nil {
		log.Warn("ignoring glamour style", "style", cfg.GlamourStyle, "error", err)
		cfg.GlamourStyle = styles.AutoStyle
	}

	cfg.Path = path
	cfg.Book = query
	cfg.EnableMouse = mouse

	var n *ui.Narration
	if !noNarration {
		var closer func() error
		n, closer = setupNarration(&cfg)
		defer func() { _ = closer() }()
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, catalog, n).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "catalog file or directory of books")
	rootCmd.Flags().StringVarP(&bookQuery, "book", "b", "", "open a book by ID or title")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", true, "turn pages by dragging with the mouse")
	rootCmd.Flags().StringVar(&voice, "voice", "", "narration voice")
	rootCmd.Flags().StringVar(&model, "model", "", "narration model")
	rootCmd.Flags().BoolVar(&noNarration, "no-narration", false, "disable reading aloud")

	// Config bindings
	_ = viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("gemini.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("gemini.model", rootCmd.Flags().Lookup("model"))

	viper.SetDefault("mouse", true)
	viper.SetDefault("catalog", "")
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.endpoint", "")
	viper.SetDefault("gemini.timeout", "60s")
	viper.SetDefault("gemini.requests_per_minute", 0)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_size", 512)
	viper.SetDefault("cache.disk", true)

	rootCmd.AddCommand(configCmd, manCmd, listCmd, cacheCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "flipbook")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "flipbook")}, dirs...)
	}

	if c := os.Getenv("FLIPBOOK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("flipbook")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("flipbook")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "flipbook.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
