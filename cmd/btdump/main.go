// btdump fetches one export series for a date range and writes it as CSV or JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sarunasign/btd/pkg/baltic"
	"github.com/sarunasign/btd/pkg/log"
	"github.com/sarunasign/btd/pkg/types"
)

func main() {
	series := lflag.RequiredString("series", "Catalog name of the series to fetch (see -list)")
	start := lflag.String("start", time.Now().AddDate(0, 0, -1).Format("2006-01-02"), "Start date (YYYY-MM-DD)")
	end := lflag.String("end", time.Now().Format("2006-01-02"), "End date (YYYY-MM-DD), exclusive midnight")
	out := lflag.String("out", "-", "Output path, - for stdout")
	format := lflag.String("format", "csv", "Output format: csv or json")
	baseURL := lflag.String("api-base-url", "", "Override for the transparency dashboard export endpoint")
	lflag.Configure()

	ctx := context.Background()

	if _, ok := baltic.Lookup(*series); !ok {
		fmt.Fprintf(os.Stderr, "unknown series %q, supported series:\n", *series)
		for _, s := range baltic.Catalog() {
			fmt.Fprintf(os.Stderr, "  %-36s %s\n", s.Name, s.Description)
		}
		os.Exit(2)
	}

	var opts []baltic.Option
	if *baseURL != "" {
		opts = append(opts, baltic.WithBaseURL(*baseURL))
	}
	client, err := baltic.New(*start, *end, opts...)
	if err != nil {
		fatal(ctx, err)
	}

	frame, err := client.Series(ctx, *series)
	if err != nil {
		fatal(ctx, err)
	}

	dst := io.Writer(os.Stdout)
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			fatal(ctx, err)
		}
		defer f.Close()
		dst = f
	}

	if err := write(dst, frame, *format); err != nil {
		fatal(ctx, err)
	}
}

func write(dst io.Writer, frame *types.Frame, format string) error {
	switch format {
	case "csv":
		return frame.WriteCSV(dst)
	case "json":
		enc := json.NewEncoder(dst)
		enc.SetIndent("", "  ")
		return enc.Encode(frame)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func fatal(ctx context.Context, err error) {
	log.Ctx(ctx).ErrorContext(ctx, "btdump failed", "error", err)
	os.Exit(1)
}
