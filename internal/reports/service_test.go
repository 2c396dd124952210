package reports

import (
	"fmt"
	"testing"
	"time"

	"trazzio-backend/internal/models"
	"trazzio-backend/internal/testdb"

	"gorm.io/gorm"
)

var lima = mustLoadLima()

func mustLoadLima() *time.Location {
	loc, err := time.LoadLocation("America/Lima")
	if err != nil {
		panic(err)
	}
	return loc
}

type env struct {
	db      *gorm.DB
	worker  models.Worker
	product models.Product
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testdb.Open(t)

	user := models.User{Email: "juan@test.local", PasswordHash: "x", Role: models.RoleWorker}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	w := models.Worker{Name: "Juan", UserID: user.ID, CommissionType: models.CommissionPercentage, Commission: 10}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}
	co := models.Company{Name: "Conservera"}
	if err := db.Create(&co).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	p := models.Product{Name: "Atún", CompanyID: co.ID, CostPrice: 2.5, SalePrice: 4.0, UnitPerBox: 48}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return env{db: db, worker: w, product: p}
}

// addSettlement crea una asignación rendida en el instante dado, con merma opcional.
func (e env) addSettlement(t *testing.T, settledAt time.Time, totalSold, totalMerma int, amountDue float64) {
	t.Helper()
	a := models.Assignment{
		WorkerID:         e.worker.ID,
		ProductID:        e.product.ID,
		QuantityAssigned: totalSold + totalMerma,
		QuantitySold:     &totalSold,
		Status:           models.AssignmentSettled,
		Date:             settledAt,
	}
	if err := e.db.Create(&a).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if totalMerma > 0 {
		m := models.MermaItem{AssignmentID: a.ID, ProductID: e.product.ID, Quantity: totalMerma}
		if err := e.db.Create(&m).Error; err != nil {
			t.Fatalf("seed merma: %v", err)
		}
	}
	s := models.Settlement{
		AssignmentID: a.ID,
		TotalSold:    totalSold,
		TotalMerma:   totalMerma,
		AmountDue:    amountDue,
		AmountPaid:   amountDue,
		SettledAt:    settledAt,
	}
	if err := e.db.Create(&s).Error; err != nil {
		t.Fatalf("seed settlement: %v", err)
	}
}

func TestBuildReportTotals(t *testing.T) {
	e := newEnv(t)
	day1 := time.Date(2025, 1, 6, 18, 0, 0, 0, lima)
	day2 := time.Date(2025, 1, 7, 18, 0, 0, 0, lima)

	e.addSettlement(t, day1, 85, 5, 340) // ganancia = 85 × (4.00 − 2.50) = 127.50
	e.addSettlement(t, day2, 50, 0, 200) // ganancia = 50 × 1.50 = 75.00

	r, err := BuildReport(e.db, lima, Filter{})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if r.TotalRevenue != 540 {
		t.Errorf("totalRevenue = %v, esperaba 540", r.TotalRevenue)
	}
	if r.TotalProfit != 202.5 {
		t.Errorf("totalProfit = %v, esperaba 202.5", r.TotalProfit)
	}
	if r.TotalMerma != 5 {
		t.Errorf("totalMerma = %d, esperaba 5", r.TotalMerma)
	}
	if r.SettlementCount != 2 {
		t.Errorf("settlementCount = %d, esperaba 2", r.SettlementCount)
	}
	if len(r.DailyBreakdown) != 2 {
		t.Fatalf("días = %d, esperaba 2", len(r.DailyBreakdown))
	}
	if r.DailyBreakdown[0].Date != "2025-01-06" || r.DailyBreakdown[0].Revenue != 340 {
		t.Errorf("día 1 = %+v", r.DailyBreakdown[0])
	}
}

func TestBuildReportPeriodsSumFromDailies(t *testing.T) {
	e := newEnv(t)
	// Tres días de la misma semana ISO (lunes 2025-01-06 a miércoles) y uno de
	// la semana siguiente.
	e.addSettlement(t, time.Date(2025, 1, 6, 10, 0, 0, 0, lima), 10, 0, 33.25)
	e.addSettlement(t, time.Date(2025, 1, 7, 10, 0, 0, 0, lima), 10, 0, 33.25)
	e.addSettlement(t, time.Date(2025, 1, 8, 10, 0, 0, 0, lima), 10, 0, 33.25)
	e.addSettlement(t, time.Date(2025, 1, 13, 10, 0, 0, 0, lima), 10, 0, 50)

	r, err := BuildReport(e.db, lima, Filter{})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if len(r.WeeklyBreakdown) != 2 {
		t.Fatalf("semanas = %d, esperaba 2", len(r.WeeklyBreakdown))
	}

	// La semana es exactamente la suma de sus días ya redondeados.
	var wantW1 float64
	for _, d := range r.DailyBreakdown {
		if d.Date < "2025-01-13" {
			wantW1 += d.Revenue
		}
	}
	w1 := r.WeeklyBreakdown[0]
	if w1.Period != "2025-W02" {
		t.Errorf("período = %s, esperaba 2025-W02", w1.Period)
	}
	if w1.Revenue != wantW1 {
		t.Errorf("semana = %v, suma de días = %v", w1.Revenue, wantW1)
	}

	if len(r.MonthlyBreakdown) != 1 {
		t.Fatalf("meses = %d, esperaba 1", len(r.MonthlyBreakdown))
	}
	if r.MonthlyBreakdown[0].Period != "2025-01" {
		t.Errorf("mes = %s, esperaba 2025-01", r.MonthlyBreakdown[0].Period)
	}
	if r.MonthlyBreakdown[0].Revenue != r.TotalRevenue {
		t.Errorf("mes = %v, total = %v; deben cuadrar exactos",
			r.MonthlyBreakdown[0].Revenue, r.TotalRevenue)
	}
}

func TestBuildReportBucketsInBusinessTimezone(t *testing.T) {
	e := newEnv(t)
	// 03:00 UTC del 7 de enero = 22:00 del 6 de enero en Lima (UTC−5):
	// la rendición pertenece al día 6.
	e.addSettlement(t, time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC), 10, 0, 40)

	r, err := BuildReport(e.db, lima, Filter{})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if len(r.DailyBreakdown) != 1 {
		t.Fatalf("días = %d, esperaba 1", len(r.DailyBreakdown))
	}
	if r.DailyBreakdown[0].Date != "2025-01-06" {
		t.Errorf("día = %s, esperaba 2025-01-06", r.DailyBreakdown[0].Date)
	}
}

func TestBuildReportFilters(t *testing.T) {
	e := newEnv(t)
	e.addSettlement(t, time.Date(2025, 1, 6, 10, 0, 0, 0, lima), 10, 0, 40)

	// Otro trabajador con su propia rendición.
	user2 := models.User{Email: "pedro@test.local", PasswordHash: "x", Role: models.RoleWorker}
	if err := e.db.Create(&user2).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	w2 := models.Worker{Name: "Pedro", UserID: user2.ID, CommissionType: models.CommissionPercentage}
	if err := e.db.Create(&w2).Error; err != nil {
		t.Fatalf("seed worker: %v", err)
	}
	other := env{db: e.db, worker: w2, product: e.product}
	other.addSettlement(t, time.Date(2025, 1, 6, 11, 0, 0, 0, lima), 20, 0, 80)

	r, err := BuildReport(e.db, lima, Filter{WorkerID: e.worker.ID})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if r.SettlementCount != 1 {
		t.Errorf("settlementCount = %d, esperaba 1 (solo Juan)", r.SettlementCount)
	}
	if r.TotalRevenue != 40 {
		t.Errorf("totalRevenue = %v, esperaba 40", r.TotalRevenue)
	}

	from := time.Date(2025, 1, 7, 0, 0, 0, 0, lima)
	r, err = BuildReport(e.db, lima, Filter{From: &from})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if r.SettlementCount != 0 {
		t.Errorf("settlementCount = %d, esperaba 0 fuera del rango", r.SettlementCount)
	}
}

func TestMermaCostReport(t *testing.T) {
	e := newEnv(t)
	e.addSettlement(t, time.Date(2025, 1, 6, 10, 0, 0, 0, lima), 80, 5, 320)
	e.addSettlement(t, time.Date(2025, 1, 7, 10, 0, 0, 0, lima), 90, 3, 360)

	lines, err := MermaCostReport(e.db, Filter{})
	if err != nil {
		t.Fatalf("MermaCostReport: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("líneas = %d, esperaba 1 (mismo producto agrupado)", len(lines))
	}
	if lines[0].Quantity != 8 {
		t.Errorf("cantidad = %d, esperaba 8", lines[0].Quantity)
	}
	// 8 unidades × 2.50 de costo
	if lines[0].TotalCost != 20 {
		t.Errorf("costo = %v, esperaba 20", lines[0].TotalCost)
	}
	if lines[0].ProductName != "Atún" {
		t.Errorf("producto = %s, esperaba Atún", lines[0].ProductName)
	}
}

func TestMermaCostReportEmpty(t *testing.T) {
	e := newEnv(t)
	lines, err := MermaCostReport(e.db, Filter{})
	if err != nil {
		t.Fatalf("MermaCostReport: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("líneas = %d, esperaba 0: %s", len(lines), fmt.Sprint(lines))
	}
}
