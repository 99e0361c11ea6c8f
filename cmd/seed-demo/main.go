// seed-demo provisions a demo account with a small catalog and some
// received stock, so a fresh environment has data to click through.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "DemoPass123"
)

type demoProduct struct {
	input   models.NewProduct
	receive int
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	user, err := models.Register(ctx, demoEmail, demoPassword)
	if err != nil {
		if !errors.Is(err, utils.ErrorDuplicateRecord) {
			fmt.Fprintf(os.Stderr, "failed to create demo user: %v\n", err)
			os.Exit(1)
		}
		user, err = models.Login(ctx, demoEmail, demoPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "demo user exists but login failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Demo user already present: %s\n", demoEmail)
	} else {
		fmt.Printf("Created demo user: %s\n", demoEmail)
	}

	ctx = utils.SetUserIdInContext(ctx, user.ID)

	catalog := []demoProduct{
		{input: models.NewProduct{Name: "USB-C Cable 1m", Description: "Braided charging cable", Threshold: 5}, receive: 8},
		{input: models.NewProduct{Name: "Wireless Mouse", Description: "2.4GHz optical mouse", Threshold: 3}, receive: 2},
		{input: models.NewProduct{Name: "Thermal Paper Roll", Description: "80mm receipt paper", Threshold: 10}, receive: 0},
	}

	for _, entry := range catalog {
		product, err := models.CreateProduct(ctx, &entry.input)
		if err != nil {
			if errors.Is(err, utils.ErrorDuplicateRecord) {
				fmt.Printf("Product already present, skipping: %s\n", entry.input.Name)
				continue
			}
			fmt.Fprintf(os.Stderr, "failed to create product %q: %v\n", entry.input.Name, err)
			os.Exit(1)
		}
		for i := 0; i < entry.receive; i++ {
			if _, err := models.ReceiveItem(ctx, product.ID); err != nil {
				fmt.Fprintf(os.Stderr, "failed to receive stock for %q: %v\n", entry.input.Name, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Created product %q with %d units\n", entry.input.Name, entry.receive)
	}

	fmt.Println("Demo data ready.")
}
