// Command import-pincodes loads a postal directory CSV
// (pincode,office,district,state) into the pincode_directory fallback table.
// The bulk dataset stays on disk; this table only backs codes the dataset
// misses.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"cs-store-backend/internal/config"
	"cs-store-backend/internal/models"
	"cs-store-backend/internal/modules/district"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	csvPath := flag.String("csv", "", "path to the postal directory CSV")
	flag.Parse()
	if *csvPath == "" {
		log.Fatal("Usage: import-pincodes -csv <path>")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	repo := district.NewRepository(pool)

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()

	// Offices sharing a pincode collapse into one row's cities, same shape
	// the resolver builds in memory.
	type entry struct {
		state, dist string
		cities      []string
	}
	rows := map[string]*entry{}

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read CSV: %v", err)
		}
		if first {
			first = false
			if len(rec) > 0 && !district.IsValidPincode(strings.TrimSpace(rec[0])) {
				continue
			}
		}
		if len(rec) < 4 {
			continue
		}
		pin := strings.TrimSpace(rec[0])
		if !district.IsValidPincode(pin) {
			continue
		}
		e, ok := rows[pin]
		if !ok {
			e = &entry{state: strings.TrimSpace(rec[3]), dist: strings.TrimSpace(rec[2])}
			rows[pin] = e
		}
		if office := strings.TrimSpace(rec[1]); office != "" {
			e.cities = append(e.cities, office)
		}
	}

	imported := 0
	for pin, e := range rows {
		sort.Strings(e.cities)
		err := repo.Upsert(ctx, &models.District{
			Pincode:        pin,
			State:          e.state,
			PostalDistrict: e.dist,
			Cities:         e.cities,
		})
		if err != nil {
			log.Fatalf("Failed to upsert pincode %s: %v", pin, err)
		}
		imported++
	}
	log.Printf("Imported %d pincodes", imported)
}
