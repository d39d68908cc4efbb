package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// ErrHelp is returned by Load when usage was printed.
var ErrHelp = errors.New("help requested")

type rawCfg struct {
	// Feed configuration
	FeedsDir string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	BaseURL  string `long:"base-url" env:"BASE_URL" description:"Public base URL used for feed self links (e.g., https://feeds.example.com)"`
	DBPath   string `long:"db-path" env:"DB_PATH" description:"SQLite database with site posts (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Feedcast/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

type serveCmd struct {
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WarmSchedule string `long:"warm-schedule" env:"WARM_SCHEDULE" description:"Cron schedule for rebuilding cached feeds (e.g., @every 5m)"`
}

type generateCmd struct {
	StaticDir string `long:"static-dir" env:"STATIC_DIR" default:"./public" description:"Output directory for generated feed files"`
}

type importCmd struct {
	File string `long:"file" env:"POSTS_FILE" default:"-" description:"YAML file with posts to upsert into the database ('-' reads stdin)"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(os.Args[1:], flags.Default)
}

func load(args []string, options flags.Options) (*Cfg, error) {
	cfg, err := parse(args, options)
	if err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func parse(args []string, options flags.Options) (*Cfg, error) {
	var (
		raw      rawCfg
		serve    serveCmd
		generate generateCmd
		imp      importCmd
	)

	parser := flags.NewParser(&raw, options)
	parser.SubcommandsOptional = true

	if _, err := parser.AddCommand(CommandServe, "Serve feeds over HTTP", "Serve every configured feed at its path (default command)", &serve); err != nil {
		return nil, err
	}
	if _, err := parser.AddCommand(CommandGenerate, "Write feeds to disk", "Render every configured feed once into the static directory", &generate); err != nil {
		return nil, err
	}
	if _, err := parser.AddCommand(CommandImport, "Import posts", "Upsert posts from a YAML file into the database given by --db-path", &imp); err != nil {
		return nil, err
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command := CommandServe
	if parser.Active != nil {
		command = parser.Active.Name
	}

	// Command options are read from the environment even when their command is not named
	if command == CommandServe && parser.Active == nil {
		if _, err := flags.NewParser(&serve, flags.IgnoreUnknown).ParseArgs(nil); err != nil {
			return nil, fmt.Errorf("failed to parse configuration: %w", err)
		}
	}

	return &Cfg{
		Command:      command,
		FeedsDir:     raw.FeedsDir,
		BaseURL:      raw.BaseURL,
		DBPath:       raw.DBPath,
		Port:         serve.Port,
		WarmSchedule: serve.WarmSchedule,
		StaticDir:    generate.StaticDir,
		ImportFile:   imp.File,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
