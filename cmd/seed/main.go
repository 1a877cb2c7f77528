// Package main implements a standalone seed script that populates the kasir
// database with the product catalog presets and, when SEED_MERCHANT_ID is
// set, a demo merchant's starting stock. It uses direct SQL so it can run
// before the service itself is up.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/c14220292/kasir/internal/config"
	"github.com/c14220292/kasir/internal/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type catalogDef struct {
	name  string
	price int64
}

type stockDef struct {
	name     string
	quantity int
	price    int64
	margin   int
}

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	dsn := getEnv("DATABASE_URL", cfg.PostgresDSN())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Println("Connecting to database...")
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	log.Println("Connected.")

	// ---------------------------------------------------------------
	// 1. Seed the global product catalog
	// ---------------------------------------------------------------
	catalog := []catalogDef{
		{name: "Indomie Goreng", price: 3000},
		{name: "Mie Gacoan Frozen", price: 15000},
		{name: "Aqua 600ml", price: 2500},
	}

	log.Println("Seeding catalog products...")
	for _, c := range catalog {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO catalog_products (id, name, price)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO UPDATE SET price = EXCLUDED.price
			 RETURNING id`,
			uuid.New().String(), c.name, decimal.NewFromInt(c.price),
		).Scan(&id)
		if err != nil {
			log.Printf("  WARNING: catalog product %q: %v", c.name, err)
			continue
		}
		log.Printf("  Catalog: %s (id=%s, price=%d)", c.name, id, c.price)
	}

	// ---------------------------------------------------------------
	// 2. Optionally seed a demo merchant's starting stock
	// ---------------------------------------------------------------
	merchantID := os.Getenv("SEED_MERCHANT_ID")
	if merchantID == "" {
		log.Println("SEED_MERCHANT_ID not set, skipping demo stock.")
		log.Println("Seed complete!")
		return
	}
	if _, err := uuid.Parse(merchantID); err != nil {
		log.Fatalf("SEED_MERCHANT_ID must be a UUID: %v", err)
	}

	stock := []stockDef{
		{name: "Indomie Goreng", quantity: 100, price: 3000, margin: 20},
		{name: "Mie Gacoan Frozen", quantity: 50, price: 15000, margin: 30},
		{name: "Aqua 600ml", quantity: 200, price: 2500, margin: 25},
	}

	log.Printf("Seeding demo stock for merchant %s ...", merchantID)
	for _, s := range stock {
		item := domain.StockItem{
			ID:                  uuid.New().String(),
			MerchantID:          merchantID,
			Name:                s.name,
			Quantity:            s.quantity,
			UnitSize:            domain.DefaultUnitSize,
			PurchaseUnitPrice:   decimal.NewFromInt(s.price),
			ProfitMarginPercent: s.margin,
		}
		item.Recompute()

		tag, err := pool.Exec(ctx,
			`INSERT INTO stock_items
			     (id, merchant_id, name, quantity, unit_size, purchase_unit_price,
			      profit_margin_percent, purchase_total, sale_unit_price, sale_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (merchant_id, name) DO NOTHING`,
			item.ID, item.MerchantID, item.Name, item.Quantity, item.UnitSize,
			item.PurchaseUnitPrice, item.ProfitMarginPercent,
			item.PurchaseTotal, item.SaleUnitPrice, item.SaleTotal,
		)
		if err != nil {
			log.Printf("  WARNING: stock item %q: %v", s.name, err)
			continue
		}
		if tag.RowsAffected() == 0 {
			log.Printf("  Stock: %s already present, skipped", s.name)
			continue
		}
		log.Printf("  Stock: %s qty=%d sale_unit=%s", s.name, s.quantity, item.SaleUnitPrice.StringFixed(2))
	}

	log.Println("Seed complete!")
}
