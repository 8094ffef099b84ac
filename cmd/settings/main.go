package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/appsettings/internal/logging"
	"github.com/eugenenazirov/appsettings/internal/settings"
)

func main() {
	app := newApp()
	if err := app.run(os.Args[1:], os.Stdout); err != nil {
		app.kingpin.FatalIfError(err, "")
	}
}

type cli struct {
	kingpin *kingpin.Application

	settingsFile *string
	verbose      *bool
	logger       *zap.Logger

	get        *kingpin.CmdClause
	getKey     *string
	getDefault *string
	getHasDef  bool
	getType    *string

	dump       *kingpin.CmdClause
	dumpFormat *string

	mode *kingpin.CmdClause
}

func newApp() *cli {
	c := &cli{kingpin: kingpin.New("appsettings", "Query the merged application settings")}
	c.verbose = c.kingpin.Flag("verbose", "Log how settings were loaded to stderr").Short('v').Bool()
	c.settingsFile = c.kingpin.Flag("settings", "Path to a settings override file (takes precedence over "+settings.OverrideEnv+")").String()

	c.get = c.kingpin.Command("get", "Print a single setting with placeholders substituted")
	c.getKey = c.get.Arg("key", "Setting key").Required().String()
	c.getDefault = c.get.Flag("default", "Value used when the key is absent or blank").IsSetByUser(&c.getHasDef).String()
	c.getType = c.get.Flag("type", "Interpret the value as string, int, bool or path").Default("string").Enum("string", "int", "bool", "path")

	c.dump = c.kingpin.Command("dump", "Print every setting, sorted by key")
	c.dumpFormat = c.dump.Flag("format", "Output format").Default("properties").Enum("properties", "yaml", "json")

	c.mode = c.kingpin.Command("mode", "Print production or dev")
	return c
}

func (c *cli) run(args []string, out io.Writer) error {
	command, err := c.kingpin.Parse(args)
	if err != nil {
		return err
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
		if *c.verbose {
			logger, err := logging.New(false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			c.logger = logger
		}
	}

	store, err := c.loadStore()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	switch command {
	case c.get.FullCommand():
		return c.runGet(store, out)
	case c.dump.FullCommand():
		return writeDump(store, *c.dumpFormat, out)
	case c.mode.FullCommand():
		mode := "dev"
		if store.IsProduction() {
			mode = "production"
		}
		_, err := fmt.Fprintln(out, mode)
		return err
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// loadStore uses the process-wide store unless an override file or verbose
// load logging was requested.
func (c *cli) loadStore() (*settings.Store, error) {
	if *c.settingsFile == "" && !*c.verbose {
		return settings.Default()
	}
	opts := []settings.Option{settings.WithLogger(c.logger)}
	if *c.settingsFile != "" {
		opts = append(opts, settings.WithOverrideFile(*c.settingsFile))
	}
	return settings.Load(opts...)
}

func (c *cli) runGet(store *settings.Store, out io.Writer) error {
	key := *c.getKey

	var value string
	switch *c.getType {
	case "int":
		def := 0
		if c.getHasDef {
			n, err := strconv.Atoi(*c.getDefault)
			if err != nil {
				return fmt.Errorf("default %q is not an integer", *c.getDefault)
			}
			def = n
		}
		value = strconv.Itoa(store.Int(key, def))
	case "bool":
		def := false
		if c.getHasDef {
			b, err := strconv.ParseBool(*c.getDefault)
			if err != nil {
				return fmt.Errorf("default %q is not a boolean", *c.getDefault)
			}
			def = b
		}
		value = strconv.FormatBool(store.Bool(key, def))
	case "path":
		value = store.Path(key, *c.getDefault)
	default:
		if c.getHasDef {
			value = store.String(key, *c.getDefault)
			break
		}
		v, ok := store.Lookup(key)
		if !ok {
			return fmt.Errorf("setting %q not found", key)
		}
		value = v
	}

	_, err := fmt.Fprintln(out, value)
	return err
}

func writeDump(store *settings.Store, format string, out io.Writer) error {
	raw := store.Properties()
	values := make(map[string]string, len(raw))
	for key := range raw {
		if v, ok := store.Lookup(key); ok {
			values[key] = v
		}
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(values); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	default:
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := fmt.Fprintf(out, "%s=%s\n", key, values[key]); err != nil {
				return err
			}
		}
		return nil
	}
}
