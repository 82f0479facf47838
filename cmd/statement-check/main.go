// Command statement-check validates and parses bank statement exports the
// same way the import endpoint does, and prints the deposits it finds.
//
//	go run ./cmd/statement-check extracto.csv movimientos.xlsx
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/tramitesplus/cuadre-api/internal/logger"
	"github.com/tramitesplus/cuadre-api/internal/services"
	"github.com/tramitesplus/cuadre-api/internal/timeutil"
)

func main() {
	maxBytes := flag.Int64("max-bytes", services.DefaultMaxUploadBytes, "maximum file size")
	flag.Parse()

	log := logger.New("development", os.Getenv("LOG_LEVEL"))
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: statement-check FILE...")
		os.Exit(2)
	}

	validator := services.NewUploadValidator(*maxBytes)
	parser := services.NewStatementParser(log)

	failed := false
	for _, path := range flag.Args() {
		if err := check(validator, parser, path); err != nil {
			log.Error().Err(err).Str("file", path).Msg("statement rejected")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func check(validator *services.UploadValidator, parser *services.StatementParser, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result := validator.Validate(data, filepath.Base(path), "")
	if err := result.Err(); err != nil {
		return err
	}

	stmt, err := parser.Parse(bytes.NewReader(data), result.FileType)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s, %d deposits, %d rows skipped\n", path, stmt.Bank, len(stmt.Deposits), stmt.Skipped)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "FECHA\tMONTO\tREFERENCIA\tDESCRIPCION\t")
	for _, d := range stmt.Deposits {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", timeutil.DateKey(d.Fecha), d.Monto.StringFixed(2), d.Referencia, d.Descripcion)
	}
	return w.Flush()
}
