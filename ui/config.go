package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourStyle string `env:"GLAMOUR_STYLE" envDefault:"auto"`
	EnableMouse  bool

	// Plain borders for terminals without box drawing glyphs.
	ASCII bool `env:"FLIPBOOK_ASCII"`

	// Book to open directly, by ID or title.
	Book string

	// Catalog file or directory the books came from. When set, the
	// catalog is reloaded whenever it changes on disk.
	Path string

	// Speaking voice and model, shown in the help view.
	Voice string
	Model string
}
