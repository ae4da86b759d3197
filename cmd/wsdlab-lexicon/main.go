// wsdlab-lexicon imports a YAML sense inventory into the SQLite lexical
// database served by wsdlab.
//
// Usage:
//
//	wsdlab-lexicon -in data/lexicon.yaml -out data/lexicon.db
//
// File order is the sense rank: the first entry listing a lemma becomes its
// most frequent sense.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kailas-cloud/wsdlab/internal/lexical/sqlite"
	"github.com/kailas-cloud/wsdlab/internal/lexical/yamllex"
)

func main() {
	cfg := parseFlags()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		cancel()
		log.Fatal(err)
	}
}

type config struct {
	in            string
	out           string
	reset         bool
	progressEvery int
}

func parseFlags() config {
	cfg := config{}
	flag.StringVar(&cfg.in, "in", "data/lexicon.yaml", "YAML lexicon to import")
	flag.StringVar(&cfg.out, "out", "data/lexicon.db", "SQLite database to write")
	flag.BoolVar(&cfg.reset, "reset", false, "remove the database before importing")
	flag.IntVar(&cfg.progressEvery, "progress", 10000, "log progress every N entries (0=never)")
	flag.Parse()
	return cfg
}

func run(ctx context.Context, cfg config) error {
	start := time.Now()

	lx, err := yamllex.Load(cfg.in)
	if err != nil {
		return err
	}
	log.Printf("loaded %d entries from %s", lx.Len(), cfg.in)

	if cfg.reset {
		if err := os.Remove(cfg.out); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reset %s: %w", cfg.out, err)
		}
	}

	store, err := sqlite.Open(ctx, cfg.out)
	if err != nil {
		return err
	}
	defer store.Close()

	for i, e := range lx.Entries() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted after %d entries: %w", i, err)
		}
		if err := store.Add(ctx, e, i); err != nil {
			return err
		}
		if cfg.progressEvery > 0 && (i+1)%cfg.progressEvery == 0 {
			log.Printf("imported %d/%d", i+1, lx.Len())
		}
	}

	log.Printf("imported %d entries into %s in %s", lx.Len(), cfg.out, time.Since(start).Round(time.Millisecond))
	return nil
}
