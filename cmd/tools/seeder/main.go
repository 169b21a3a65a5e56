package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://db/migrations"
	}
	runMigrations(migrationsPath, dbURL)

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(db)

	log.Println("Seeding completed successfully!")
}

func runMigrations(sourceURL, dbURL string) {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		log.Fatalf("Failed to initialise migrations: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Println("Migrations applied")
}

type tier struct {
	Min   int
	Max   sql.NullInt32
	Price int64
}

func bounded(max int32) sql.NullInt32 {
	return sql.NullInt32{Int32: max, Valid: true}
}

func seedProducts(db *sql.DB) {
	products := []struct {
		Name  string
		Slug  string
		Price int64
		Stock int
		MOQ   int
		Tiers []tier
	}{
		{
			"Stainless Steel Water Bottle 1L", "steel-water-bottle-1l", 1299, 50, 1,
			[]tier{
				{1, bounded(4), 1299},
				{5, bounded(9), 1199},
				{10, sql.NullInt32{}, 1099},
			},
		},
		{
			"Organic Cotton Tote Bag", "organic-cotton-tote", 499, 300, 1,
			[]tier{
				{1, bounded(9), 499},
				{10, bounded(49), 449},
				{50, sql.NullInt32{}, 399},
			},
		},
		{
			"Ceramic Coffee Mug 350ml", "ceramic-coffee-mug", 799, 120, 2,
			[]tier{
				{1, bounded(11), 799},
				{12, sql.NullInt32{}, 699},
			},
		},
		{
			"Bamboo Cutlery Set", "bamboo-cutlery-set", 999, 80, 1,
			nil,
		},
		{
			"Handwoven Jute Rug 4x6", "handwoven-jute-rug", 249900, 15, 1,
			[]tier{
				{1, bounded(2), 249900},
				{3, sql.NullInt32{}, 229900},
			},
		},
	}

	fmt.Println("Seeding Products...")
	for _, p := range products {
		var prodID string
		err := db.QueryRow(`
			INSERT INTO products (name, slug, base_price, stock, moq)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				base_price = EXCLUDED.base_price,
				stock = EXCLUDED.stock,
				moq = EXCLUDED.moq,
				updated_at = NOW()
			RETURNING id;
		`, p.Name, p.Slug, p.Price, p.Stock, p.MOQ).Scan(&prodID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
			continue
		}

		for _, t := range p.Tiers {
			_, err := db.Exec(`
				INSERT INTO product_tiers (product_id, min_quantity, max_quantity, unit_price)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (product_id, min_quantity) DO UPDATE SET
					max_quantity = EXCLUDED.max_quantity,
					unit_price = EXCLUDED.unit_price;
			`, prodID, t.Min, t.Max, t.Price)
			if err != nil {
				log.Printf("Failed to seed tier %d for %s: %v", t.Min, p.Name, err)
			}
		}
	}
}
