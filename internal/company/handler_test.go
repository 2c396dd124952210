package company

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/testdb"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	database.DB = testdb.Open(t)

	app := fiber.New()
	app.Delete("/api/companies/:id", DeleteCompanyHandler())
	return app
}

// seedCompanyWithHistory: empresa con producto, ingreso de stock y asignación rendida.
func seedCompanyWithHistory(t *testing.T) models.Company {
	t.Helper()
	db := database.DB

	co := models.Company{Name: "Conservera"}
	if err := db.Create(&co).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	p := models.Product{Name: "Atún", CompanyID: co.ID, CostPrice: 2.5, SalePrice: 4.0, UnitPerBox: 48, Stock: 100}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	e := models.StockEntry{ProductID: p.ID, Quantity: 100, EntryDate: time.Now()}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed stock entry: %v", err)
	}

	user := models.User{Email: "juan@test.local", PasswordHash: "x", Role: models.RoleWorker}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	w := models.Worker{Name: "Juan", UserID: user.ID, CommissionType: models.CommissionPercentage}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}
	a := models.Assignment{
		WorkerID: w.ID, ProductID: p.ID, QuantityAssigned: 50,
		Status: models.AssignmentSettled, Date: time.Now(),
	}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	m := models.MermaItem{AssignmentID: a.ID, ProductID: p.ID, Quantity: 2}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed merma: %v", err)
	}
	s := models.Settlement{AssignmentID: a.ID, TotalSold: 48, TotalMerma: 2, AmountDue: 192, AmountPaid: 192, SettledAt: time.Now()}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed settlement: %v", err)
	}
	return co
}

func deleteCompany(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	req := httptest.NewRequest("DELETE", path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := database.DB.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestDeleteCompanyBlockedWithProducts(t *testing.T) {
	app := newTestApp(t)
	co := seedCompanyWithHistory(t)

	status := deleteCompany(t, app, fmt.Sprintf("/api/companies/%d", co.ID))
	if status != fiber.StatusConflict {
		t.Fatalf("status = %d, esperaba 409", status)
	}

	if n := count(t, &models.Company{}); n != 1 {
		t.Errorf("empresa eliminada pese al bloqueo")
	}
	if n := count(t, &models.Product{}); n != 1 {
		t.Errorf("productos = %d, esperaba 1 intacto", n)
	}
}

func TestDeleteCompanyForceCascades(t *testing.T) {
	app := newTestApp(t)
	co := seedCompanyWithHistory(t)

	status := deleteCompany(t, app, fmt.Sprintf("/api/companies/%d?force=true", co.ID))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, esperaba 200", status)
	}

	// El cascade arrastra productos, ingresos de stock y todo el historial
	// de asignaciones del producto; el trabajador queda.
	if n := count(t, &models.Company{}); n != 0 {
		t.Errorf("la empresa sigue existiendo")
	}
	if n := count(t, &models.Product{}); n != 0 {
		t.Errorf("productos restantes = %d", n)
	}
	if n := count(t, &models.StockEntry{}); n != 0 {
		t.Errorf("ingresos de stock restantes = %d", n)
	}
	if n := count(t, &models.Assignment{}); n != 0 {
		t.Errorf("asignaciones restantes = %d", n)
	}
	if n := count(t, &models.Settlement{}); n != 0 {
		t.Errorf("rendiciones restantes = %d", n)
	}
	if n := count(t, &models.MermaItem{}); n != 0 {
		t.Errorf("items de merma restantes = %d", n)
	}
	if n := count(t, &models.Worker{}); n != 1 {
		t.Errorf("el trabajador no debía eliminarse")
	}
}

func TestDeleteCompanyWithoutProducts(t *testing.T) {
	app := newTestApp(t)
	co := models.Company{Name: "Nueva"}
	if err := database.DB.Create(&co).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	status := deleteCompany(t, app, fmt.Sprintf("/api/companies/%d", co.ID))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, esperaba 200", status)
	}
	if n := count(t, &models.Company{}); n != 0 {
		t.Errorf("la empresa sigue existiendo")
	}
}
