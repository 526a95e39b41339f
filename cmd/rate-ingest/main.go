package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/shwekart/preorder-backend/internal/domain/exchange"
	"github.com/shwekart/preorder-backend/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	dateLayout    = "2006-01-02"
)

// rateRow is one parsed line of a feed dump: TYPE,VALUE,DATE.
type rateRow struct {
	typ   exchange.RateType
	value decimal.Decimal
	date  time.Time
}

func main() {
	var (
		databaseURL  string
		merchantID   string
		fromCurrency string
		toCurrency   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&merchantID, "merchant-id", "", "merchant whose rate history is being imported")
	flag.StringVar(&fromCurrency, "from", "THB", "native currency of the imported rates")
	flag.StringVar(&toCurrency, "to", "MMK", "base currency of the imported rates")
	flag.Parse()

	files := flag.Args()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if merchantID == "" {
		slog.Error("merchant ID is required: set --merchant-id")
		os.Exit(1)
	}
	if len(files) == 0 {
		slog.Error("at least one .gz feed dump is required as an argument")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, merchantID, fromCurrency, toCurrency, files); err != nil {
		slog.Error("rate ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("rate ingest completed successfully")
}

func run(ctx context.Context, databaseURL, merchantID, fromCurrency, toCurrency string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: parse every feed dump concurrently.
	slog.Info("parsing feed dumps", slog.Int("files", len(files)))

	parsed := make([][]rateRow, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFeedFile(gctx, i, f, parsed))
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "parse feed dumps")
	}

	// Pass 2: merge with a bloom filter so a (type, date, value) triple seen
	// in an earlier feed is not written again. Feeds overlap heavily; the
	// upsert keyed on (merchant, type, date) makes a false positive harmless.
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var merged []rateRow
	for _, rows := range parsed {
		for _, row := range rows {
			key := fmt.Sprintf("%s|%s|%s", row.typ, row.date.Format(dateLayout), row.value.String())
			if filter.TestAndAddString(key) {
				continue
			}
			merged = append(merged, row)
		}
	}

	slog.Info("rates to import", slog.Int("count", len(merged)))

	if len(merged) == 0 {
		slog.Info("no rates to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	rates := repository.NewRateRepository(pool)
	for i, row := range merged {
		rate := exchange.Rate{
			ID:            uuid.New().String(),
			MerchantID:    merchantID,
			Type:          row.typ,
			Value:         row.value,
			FromCurrency:  fromCurrency,
			ToCurrency:    toCurrency,
			EffectiveDate: row.date,
		}
		if err := rates.Upsert(ctx, &rate); err != nil {
			return errors.Wrapf(err, "upsert rate %s %s", row.typ, row.date.Format(dateLayout))
		}

		if (i+1)%1000 == 0 || i+1 == len(merged) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(merged)))
		}
	}

	return nil
}

// parseFeedFile streams one gzip-compressed feed dump and collects its rows.
func parseFeedFile(ctx context.Context, idx int, path string, results [][]rateRow) func() error {
	return func() error {
		var (
			rows  []rateRow
			count uint64
		)

		if err := streamGzFile(ctx, path, func(line string) error {
			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.Int("file", idx+1),
					slog.Uint64("lines", count),
				)
			}

			row, err := parseLine(line)
			if err != nil {
				// Feed dumps carry headers and malformed trailers; skip them.
				return nil
			}
			rows = append(rows, row)
			return nil
		}); err != nil {
			return errors.Wrapf(err, "stream file %d", idx+1)
		}

		slog.Info("parse complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_lines", count),
			slog.Int("rates", len(rows)),
		)

		results[idx] = rows
		return nil
	}
}

// parseLine decodes one TYPE,VALUE,DATE line.
func parseLine(line string) (rateRow, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 3 {
		return rateRow{}, errors.Errorf("expected 3 fields, got %d", len(parts))
	}

	var typ exchange.RateType
	switch strings.ToUpper(strings.TrimSpace(parts[0])) {
	case "BUY":
		typ = exchange.RateBuy
	case "SELL":
		typ = exchange.RateSell
	default:
		return rateRow{}, errors.Errorf("unknown rate type %q", parts[0])
	}

	value, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return rateRow{}, errors.Wrap(err, "parse value")
	}
	if !value.IsPositive() {
		return rateRow{}, errors.New("rate must be positive")
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(parts[2]))
	if err != nil {
		return rateRow{}, errors.Wrap(err, "parse date")
	}

	return rateRow{typ: typ, value: value, date: date}, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
