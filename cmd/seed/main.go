// Command seed loads place names from a TSV or plain-text file into the Atlas
// store. It accepts GeoNames dump rows as well as one name per line, and can
// be re-run safely: known names are skipped.
package main

import (
	"context"
	"flag"
	"log"

	"atlas/internal/config"
	"atlas/internal/geo"
	"atlas/internal/store"
)

func main() {
	path := flag.String("file", "", "path to the place name file (TSV or one name per line)")
	flag.Parse()
	if *path == "" {
		log.Fatal("usage: seed -file places.tsv")
	}

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load environment: %v", err)
	}
	st, err := store.Open(env)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	names, err := geo.LoadNamesFile(*path)
	if err != nil {
		log.Fatalf("read %s: %v", *path, err)
	}

	added, err := st.SeedCorpus(context.Background(), names)
	if err != nil {
		log.Fatalf("seed corpus: %v", err)
	}
	total, err := st.CountPlaces(context.Background())
	if err != nil {
		log.Fatalf("count places: %v", err)
	}
	log.Printf("added %d of %d names (%d total in corpus)", added, len(names), total)
}
