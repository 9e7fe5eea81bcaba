package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yjkogan/stuff-tracker/internal/back"
	"github.com/yjkogan/stuff-tracker/internal/config"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := run(flag.Arg(0), flag.Args()); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(command string, args []string) error {
	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "stuff-tracker %s\n", Version)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	case "serve", "migrate", "rerank", "user:add", "dev:fixtures":
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	if err := migrateUp(conf.DatabasePath); err != nil {
		return err
	}
	if command == "migrate" {
		return nil
	}

	params, err := conf.GlickoParams()
	if err != nil {
		return err
	}

	b, err := back.New(conf.DatabasePath, params)
	if err != nil {
		return err
	}
	defer b.Close()

	switch command {
	case "serve":
		return serve(b, conf)
	case "rerank":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s rerank CATEGORY", os.Args[0])
		}
		return rerank(b, args[1])
	case "user:add":
		if len(args) != 3 {
			return fmt.Errorf("usage: %s user:add NAME PASSWORD", os.Args[0])
		}
		return addUser(b, args[1], args[2])
	case "dev:fixtures":
		return loadFixtures(b)
	}

	return nil
}

func help() string {
	return fmt.Sprintf(`
stuff-tracker ranks the things you own, eat, or drink by asking you which of
two is better.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures           create default data for quick testing during development
    help                   display this help
    migrate                apply pending database migrations
    rerank CATEGORY        recompute the ratings of a category from its comparisons
    serve                  start the HTTP API
    user:add NAME PASSWORD create a user able to log in
    version                display the current version

Configuration is read from $XDG_CONFIG_HOME/stuff-tracker/config.json and the
STUFF_TRACKER_* environment variables.
`,
		os.Args[0],
	)
}
