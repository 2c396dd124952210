package worker

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/config"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/testdb"

	"github.com/gofiber/fiber/v2"
)

const testSecret = "clave-de-prueba-solo-para-tests-0123456789"

var testCfg = &config.Config{JWTSecret: testSecret}

// newTestApp monta las rutas de trabajadores sobre una base en memoria y
// devuelve un token de admin para las peticiones.
func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	database.DB = testdb.Open(t)

	admin := models.User{Email: "admin@test.local", PasswordHash: "x", Role: models.RoleAdmin}
	if err := database.DB.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, err := auth.GenerateToken(testSecret, &admin, nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	app := fiber.New()
	api := app.Group("/api", auth.JWTMiddleware(testCfg))
	api.Delete("/workers/:id", DeleteWorkerHandler())
	return app, token
}

// seedWorkerWithHistory: trabajador con asignación rendida, merma y un pago.
func seedWorkerWithHistory(t *testing.T) models.Worker {
	t.Helper()
	db := database.DB

	user := models.User{Email: "juan@test.local", PasswordHash: "x", Role: models.RoleWorker}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	w := models.Worker{Name: "Juan", UserID: user.ID, CommissionType: models.CommissionPercentage}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}
	co := models.Company{Name: "Conservera"}
	if err := db.Create(&co).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	p := models.Product{Name: "Atún", CompanyID: co.ID, CostPrice: 2.5, SalePrice: 4.0, UnitPerBox: 48, Stock: 100}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
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
	pay := models.WorkerPayment{WorkerID: w.ID, Amount: 20, PaidAt: time.Now()}
	if err := db.Create(&pay).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return w
}

func deleteWorker(t *testing.T, app *fiber.App, token, path string) int {
	t.Helper()
	req := httptest.NewRequest("DELETE", path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := database.DB.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestDeleteWorkerBlockedWithHistory(t *testing.T) {
	app, token := newTestApp(t)
	w := seedWorkerWithHistory(t)

	status := deleteWorker(t, app, token, fmt.Sprintf("/api/workers/%d", w.ID))
	if status != fiber.StatusConflict {
		t.Fatalf("status = %d, esperaba 409", status)
	}

	// Nada se eliminó: ni el trabajador ni su historial.
	if n := count(t, &models.Worker{}, "id = ?", w.ID); n != 1 {
		t.Errorf("trabajador eliminado pese al bloqueo")
	}
	if n := count(t, &models.Assignment{}, "worker_id = ?", w.ID); n != 1 {
		t.Errorf("asignaciones = %d, esperaba 1 intacta", n)
	}
	if n := count(t, &models.User{}, "id = ?", w.UserID); n != 1 {
		t.Errorf("usuario de acceso eliminado pese al bloqueo")
	}
}

func TestDeleteWorkerForceCascades(t *testing.T) {
	app, token := newTestApp(t)
	w := seedWorkerWithHistory(t)

	status := deleteWorker(t, app, token, fmt.Sprintf("/api/workers/%d?force=true", w.ID))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, esperaba 200", status)
	}

	// El cascade arrastra todo el historial y el usuario de acceso.
	if n := count(t, &models.Worker{}, "id = ?", w.ID); n != 0 {
		t.Errorf("el trabajador sigue existiendo")
	}
	if n := count(t, &models.Assignment{}, "worker_id = ?", w.ID); n != 0 {
		t.Errorf("asignaciones restantes = %d", n)
	}
	if n := count(t, &models.Settlement{}, "1 = 1"); n != 0 {
		t.Errorf("rendiciones restantes = %d", n)
	}
	if n := count(t, &models.MermaItem{}, "1 = 1"); n != 0 {
		t.Errorf("items de merma restantes = %d", n)
	}
	if n := count(t, &models.WorkerPayment{}, "worker_id = ?", w.ID); n != 0 {
		t.Errorf("pagos restantes = %d", n)
	}
	if n := count(t, &models.User{}, "id = ?", w.UserID); n != 0 {
		t.Errorf("el usuario de acceso sigue existiendo")
	}
}

func TestDeleteWorkerWithoutHistory(t *testing.T) {
	app, token := newTestApp(t)

	user := models.User{Email: "pedro@test.local", PasswordHash: "x", Role: models.RoleWorker}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	w := models.Worker{Name: "Pedro", UserID: user.ID, CommissionType: models.CommissionPercentage}
	if err := database.DB.Create(&w).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}

	// Sin asignaciones no hace falta force.
	status := deleteWorker(t, app, token, fmt.Sprintf("/api/workers/%d", w.ID))
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, esperaba 200", status)
	}
	if n := count(t, &models.Worker{}, "id = ?", w.ID); n != 0 {
		t.Errorf("el trabajador sigue existiendo")
	}
}
