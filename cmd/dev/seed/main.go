package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/notcis/apartment-app/internal/reference"
	"github.com/notcis/apartment-app/pkg/config"
	"github.com/notcis/apartment-app/pkg/db"
)

func main() {
	var (
		apiURL        = flag.String("api-url", "", "running API base url used to create sample rooms (defaults to http://localhost<HTTP_ADDR>)")
		floors        = flag.Int("floors", 0, "number of floors of sample rooms to create through the API (0 = reference data only)")
		roomsPerFloor = flag.Int("rooms-per-floor", 5, "sample rooms per floor")
	)
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
	}

	var buildingID, typeID int64
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		var n int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM buildings`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			fmt.Println("buildings already present; skipping reference seed")
			if err := tx.QueryRow(ctx, `SELECT id FROM buildings ORDER BY id LIMIT 1`).Scan(&buildingID); err != nil {
				return err
			}
			_ = tx.QueryRow(ctx, `SELECT id FROM room_types ORDER BY id LIMIT 1`).Scan(&typeID)
			return nil
		}

		for i, b := range reference.SeedBuildings {
			id, err := reference.InsertBuilding(ctx, tx, b.Name)
			if err != nil {
				return fmt.Errorf("insert building %q: %w", b.Name, err)
			}
			if i == 0 {
				buildingID = id
			}
		}
		for i, t := range reference.SeedRoomTypes {
			id, err := reference.InsertRoomType(ctx, tx, t)
			if err != nil {
				return fmt.Errorf("insert room type %q: %w", t.Name, err)
			}
			if i == 0 {
				typeID = id
			}
		}
		fmt.Printf("seeded %d buildings, %d room types\n", len(reference.SeedBuildings), len(reference.SeedRoomTypes))
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed reference data: %v\n", err)
		os.Exit(1)
	}

	if *floors <= 0 {
		return
	}
	if *apiURL == "" {
		*apiURL = defaultAPIURL(cfg.HTTPAddr)
	}

	// Sample rooms go through the API so validation and view invalidation run.
	client := &http.Client{Timeout: 10 * time.Second}
	created := 0
	for floor := 1; floor <= *floors; floor++ {
		for n := 1; n <= *roomsPerFloor; n++ {
			body := map[string]any{
				"buildingId": buildingID,
				"floor":      floor,
				"number":     fmt.Sprintf("%d%02d", floor, n),
				"baseRent":   "2500",
				"status":     "VACANT",
			}
			if typeID != 0 {
				body["typeId"] = typeID
			}
			if err := postRoom(client, *apiURL, body); err != nil {
				fmt.Fprintf(os.Stderr, "create room %v: %v\n", body["number"], err)
				fmt.Fprintf(os.Stderr, "tip: is the API running? api_url=%s\n", *apiURL)
				os.Exit(1)
			}
			created++
		}
	}
	fmt.Printf("created %d sample rooms in building %d\n", created, buildingID)
}

func postRoom(client *http.Client, baseURL string, body map[string]any) error {
	b, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(baseURL, "/")+"/v1/rooms", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

func defaultAPIURL(httpAddr string) string {
	// httpAddr is typically ":8081" or "0.0.0.0:8081".
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8081"
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		addr = strings.TrimPrefix(addr, "0.0.0.0")
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
