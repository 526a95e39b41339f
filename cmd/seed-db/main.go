package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shwekart/preorder-backend/internal/domain/exchange"
	"github.com/shwekart/preorder-backend/internal/repository"
)

const (
	merchantID = "m-demo"

	upsertMerchantSQL = `INSERT INTO merchants (id, name, base_currency, purchase_currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	upsertCustomerSQL = `INSERT INTO customers (id, merchant_id, name, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone`
)

var customers = []struct {
	id, name, phone string
}{
	{"c-aye", "Aye Chan", "+95 9 111 222 333"},
	{"c-thiri", "Thiri Win", "+95 9 444 555 666"},
	{"c-kyaw", "Kyaw Zin", "+95 9 777 888 999"},
}

func main() {
	var (
		databaseURL string
		buyRate     string
		sellRate    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&buyRate, "buy-rate", "120.50", "BUY rate to seed for today")
	flag.StringVar(&sellRate, "sell-rate", "123.00", "SELL rate to seed for today")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, buyRate, sellRate); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, buyRate, sellRate string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedMerchant(ctx, pool); err != nil {
		return errors.Wrap(err, "seed merchant")
	}

	if err := seedRates(ctx, pool, buyRate, sellRate); err != nil {
		return errors.Wrap(err, "seed rates")
	}

	return nil
}

func seedMerchant(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, upsertMerchantSQL, merchantID, "Shwe Kart Demo Shop", "MMK", "THB"); err != nil {
		return errors.Wrap(err, "upsert merchant")
	}
	slog.Info("merchant seeded", slog.String("id", merchantID))

	for _, c := range customers {
		if _, err := pool.Exec(ctx, upsertCustomerSQL, c.id, merchantID, c.name, c.phone); err != nil {
			return errors.Wrapf(err, "upsert customer %s", c.id)
		}
	}
	slog.Info("customers seeded", slog.Int("count", len(customers)))

	return nil
}

func seedRates(ctx context.Context, pool *pgxpool.Pool, buyRate, sellRate string) error {
	buy, err := decimal.NewFromString(buyRate)
	if err != nil {
		return errors.Wrap(err, "parse buy rate")
	}
	sell, err := decimal.NewFromString(sellRate)
	if err != nil {
		return errors.Wrap(err, "parse sell rate")
	}

	rates := repository.NewRateRepository(pool)
	today := time.Now().Truncate(24 * time.Hour)

	for _, r := range []exchange.Rate{
		{Type: exchange.RateBuy, Value: buy},
		{Type: exchange.RateSell, Value: sell},
	} {
		r.ID = uuid.New().String()
		r.MerchantID = merchantID
		r.FromCurrency = "THB"
		r.ToCurrency = "MMK"
		r.EffectiveDate = today

		if err := rates.Upsert(ctx, &r); err != nil {
			return errors.Wrapf(err, "upsert %s rate", r.Type)
		}
		slog.Info("rate seeded", slog.String("type", string(r.Type)), slog.String("value", r.Value.String()))
	}

	return nil
}
