package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

func TestInventoryLedgerEndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "inventory_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	alice, err := models.Register(ctx, "alice@test.local", "AlicePass1")
	if err != nil {
		t.Fatalf("Register alice: %v", err)
	}
	bob, err := models.Register(ctx, "bob@test.local", "BobPass12")
	if err != nil {
		t.Fatalf("Register bob: %v", err)
	}

	if _, err := models.Register(ctx, "Alice@Test.Local", "AlicePass1"); !errors.Is(err, utils.ErrorDuplicateRecord) {
		t.Fatalf("expected duplicate email to be rejected, got %v", err)
	}

	if _, err := models.Login(ctx, "alice@test.local", "WrongPass1"); !errors.Is(err, utils.ErrorInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := models.Login(ctx, "alice@test.local", "AlicePass1"); err != nil {
		t.Fatalf("Login alice: %v", err)
	}
	// Second login is served from the redis cache and must still verify
	// the password against the stored hash.
	loggedIn, err := models.Login(ctx, "alice@test.local", "AlicePass1")
	if err != nil {
		t.Fatalf("cache-hit login: %v", err)
	}
	if loggedIn.ID != alice.ID {
		t.Fatalf("cache-hit login returned user %d, want %d", loggedIn.ID, alice.ID)
	}
	if _, err := models.Login(ctx, "alice@test.local", "WrongPass1"); !errors.Is(err, utils.ErrorInvalidCredentials) {
		t.Fatalf("cache-hit login with wrong password: want invalid credentials, got %v", err)
	}

	aliceCtx := utils.SetUserIdInContext(ctx, alice.ID)
	bobCtx := utils.SetUserIdInContext(ctx, bob.ID)

	product, err := models.CreateProduct(aliceCtx, &models.NewProduct{
		Name:      "Widget",
		Threshold: 3,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Quantity != 0 {
		t.Fatalf("new product quantity = %d, want 0", product.Quantity)
	}

	// Same name is taken per owner, not globally.
	if _, err := models.CreateProduct(aliceCtx, &models.NewProduct{Name: "Widget"}); !errors.Is(err, utils.ErrorDuplicateRecord) {
		t.Fatalf("expected duplicate product name for same owner, got %v", err)
	}
	if _, err := models.CreateProduct(bobCtx, &models.NewProduct{Name: "Widget"}); err != nil {
		t.Fatalf("same name under another owner should succeed: %v", err)
	}

	// Other owners see the product as nonexistent.
	if _, err := models.GetProduct(bobCtx, product.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected foreign product to read as not found, got %v", err)
	}

	// Receive three units.
	var lastBarcode string
	for i := 0; i < 3; i++ {
		result, err := models.ReceiveItem(aliceCtx, product.ID)
		if err != nil {
			t.Fatalf("ReceiveItem #%d: %v", i+1, err)
		}
		if result.NewQuantity != i+1 {
			t.Fatalf("receive #%d new_quantity = %d, want %d", i+1, result.NewQuantity, i+1)
		}
		if result.QRImage == "" {
			t.Fatal("receive returned empty qr image")
		}
		parts, err := utils.ParseBarcodeData(result.BarcodeData)
		if err != nil {
			t.Fatalf("minted barcode does not parse: %v", err)
		}
		if parts.UserId != alice.ID || parts.ProductId != product.ID {
			t.Fatalf("minted barcode has wrong owner/product: %+v", parts)
		}
		lastBarcode = result.BarcodeData
	}

	if _, err := models.ReceiveItem(aliceCtx, 999999); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("receiving into a nonexistent product should be not found, got %v", err)
	}
	if _, err := models.ReceiveItem(bobCtx, product.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("receiving into a foreign product should be not found, got %v", err)
	}

	reloaded, err := models.GetProduct(aliceCtx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if reloaded.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", reloaded.Quantity)
	}
	if reloaded.IsLowStock {
		t.Fatal("quantity equal to threshold must not be low stock")
	}

	// Dispatch one unit, dropping to 2 (< threshold 3) = warning alert.
	dispatched, err := models.DispatchItem(aliceCtx, lastBarcode)
	if err != nil {
		t.Fatalf("DispatchItem: %v", err)
	}
	if dispatched.NewQuantity != 2 {
		t.Fatalf("dispatch new_quantity = %d, want 2", dispatched.NewQuantity)
	}

	// Re-dispatching the same barcode is a conflict, never a second decrement.
	if _, err := models.DispatchItem(aliceCtx, lastBarcode); !errors.Is(err, utils.ErrorAlreadyDispatched) {
		t.Fatalf("expected already dispatched, got %v", err)
	}

	// Malformed and foreign barcodes fail identically.
	if _, err := models.DispatchItem(aliceCtx, "garbage"); !errors.Is(err, utils.ErrorInvalidBarcode) {
		t.Fatalf("expected invalid barcode for malformed token, got %v", err)
	}
	if _, err := models.DispatchItem(bobCtx, lastBarcode); !errors.Is(err, utils.ErrorInvalidBarcode) {
		t.Fatalf("expected invalid barcode for foreign token, got %v", err)
	}

	// Well-formed, owner-matching, but never minted.
	phantom := utils.GenerateBarcodeData(alice.ID, product.ID, "never-minted")
	if _, err := models.DispatchItem(aliceCtx, phantom); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found for unminted barcode, got %v", err)
	}

	alerts, err := models.GetLowStockAlerts(aliceCtx)
	if err != nil {
		t.Fatalf("GetLowStockAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].ProductId != product.ID || alerts[0].Urgency != models.AlertUrgencyWarning {
		t.Fatalf("unexpected alert: %+v", alerts[0])
	}

	// Drain the remaining two units.
	listed, err := models.GetProduct(aliceCtx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	for _, item := range listed.Items {
		if item.Status != models.ItemStatusReceived {
			continue
		}
		if _, err := models.DispatchItem(aliceCtx, item.Barcode); err != nil {
			t.Fatalf("drain dispatch: %v", err)
		}
	}

	alerts, err = models.GetLowStockAlerts(aliceCtx)
	if err != nil {
		t.Fatalf("GetLowStockAlerts after drain: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Urgency != models.AlertUrgencyCritical {
		t.Fatalf("expected one critical alert at zero stock, got %+v", alerts)
	}
	if alerts[0].CurrentQuantity != 0 {
		t.Fatalf("alert quantity = %d, want 0", alerts[0].CurrentQuantity)
	}

	stats, err := models.GetDashboardStats(aliceCtx)
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if stats.TotalProducts != 1 {
		t.Fatalf("total_products = %d, want 1", stats.TotalProducts)
	}
	if stats.TotalStock != 0 {
		t.Fatalf("total_stock = %d, want 0", stats.TotalStock)
	}
	if stats.LowStockCount != 1 || stats.OutOfStockCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// Bob's dashboard only counts Bob's catalog.
	bobStats, err := models.GetDashboardStats(bobCtx)
	if err != nil {
		t.Fatalf("GetDashboardStats bob: %v", err)
	}
	if bobStats.TotalProducts != 1 || bobStats.TotalStock != 0 {
		t.Fatalf("unexpected bob stats: %+v", bobStats)
	}
}

// Concurrent dispatches of distinct items must serialize on the product
// row: every dispatch succeeds exactly once and the final quantity is 0.
func TestConcurrentDispatchSerializesOnProduct(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", "")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "inventory_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	user, err := models.Register(ctx, "race@test.local", "RacePass1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	userCtx := utils.SetUserIdInContext(ctx, user.ID)

	product, err := models.CreateProduct(userCtx, &models.NewProduct{Name: "Contended"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	const n = 10
	barcodes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		result, err := models.ReceiveItem(userCtx, product.ID)
		if err != nil {
			t.Fatalf("ReceiveItem: %v", err)
		}
		barcodes = append(barcodes, result.BarcodeData)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, barcode := range barcodes {
		wg.Add(1)
		go func(barcode string) {
			defer wg.Done()
			if _, err := models.DispatchItem(userCtx, barcode); err != nil {
				errs <- err
			}
		}(barcode)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent dispatch: %v", err)
	}

	final, err := models.GetProduct(userCtx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if final.Quantity != 0 {
		t.Fatalf("final quantity = %d, want 0", final.Quantity)
	}
	for _, item := range final.Items {
		if item.Status != models.ItemStatusDispatched {
			t.Fatalf("item %d not dispatched", item.ID)
		}
		if item.DispatchedAt == nil {
			t.Fatalf("item %d missing dispatched_at", item.ID)
		}
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("inventory-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("inventory-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=inventory_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
