// Command multiblob is a general purpose CLI interface to blob stores.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/bobg/subcmd"

	"github.com/Connoropolous/multiblob"
	_ "github.com/Connoropolous/multiblob/store/file"
	_ "github.com/Connoropolous/multiblob/store/logging"
	_ "github.com/Connoropolous/multiblob/store/lru"
	_ "github.com/Connoropolous/multiblob/store/mem"
	_ "github.com/Connoropolous/multiblob/store/sqlite3"
)

type maincmd struct {
	s multiblob.Store
}

func main() {
	config := flag.String("config", "multiblob.json", "path to config file (.json, .jsonc, .yaml, or .yml)")
	flag.Parse()

	if *config == "" {
		log.Fatal("Config value not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s, err := storeFromConfig(ctx, *config)
	if err != nil {
		log.Fatal(err)
	}

	err = subcmd.Run(ctx, maincmd{s: s}, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"get":     withFlagSet("get", c.get),
		"has":     withFlagSet("has", c.has),
		"ls":      withFlagSet("ls", c.ls),
		"meta":    withFlagSet("meta", c.meta),
		"put":     withFlagSet("put", c.put),
		"resolve": withFlagSet("resolve", c.resolve),
		"rm":      withFlagSet("rm", c.rm),
		"size":    withFlagSet("size", c.size),
	}
}

// withFlagSet adapts a subcommand that parses its own flags to subcmd.Subcmd.
// With no Params, subcmd.Run passes the raw args through unparsed.
func withFlagSet(name string, f func(context.Context, *flag.FlagSet, []string) error) subcmd.Subcmd {
	return subcmd.Subcmd{
		F: func(ctx context.Context, args []string) error {
			return f(ctx, flag.NewFlagSet(name, flag.ContinueOnError), args)
		},
	}
}
