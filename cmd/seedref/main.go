// Command seedref converts the vehicle and port reference workbook into a
// seed file: SQL for the reference tables or YAML for the file source.
// Usage: go run ./cmd/seedref -in reference.xlsx -format sql
// Output: db/seeds/reference.sql (or db/seeds/reference.yaml)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xuri/excelize/v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "reference.xlsx", "input workbook")
	format := flag.String("format", "sql", "output format: sql or yaml")
	outPath := flag.String("out", "", "output file (default db/seeds/reference.<format>)")
	flag.Parse()

	if *outPath == "" {
		*outPath = "db/seeds/reference." + *format
	}

	f, err := excelize.OpenFile(*in)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	seed, err := readWorkbook(f)
	if err != nil {
		return err
	}
	log.Printf("workbook: %d vehicles, %d ports", len(seed.Vehicles), len(seed.Ports))

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	switch *format {
	case "sql":
		err = writeSQL(out, seed)
	case "yaml":
		err = writeYAML(out, seed)
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	log.Printf("Generated %s", *outPath)
	return nil
}
