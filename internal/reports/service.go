package reports

import (
	"sort"
	"time"

	"trazzio-backend/internal/models"
	"trazzio-backend/internal/timeutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type moneyAcc struct {
	revenue decimal.Decimal
	profit  decimal.Decimal
}

type Filter struct {
	From      *time.Time
	To        *time.Time
	WorkerID  uint // 0 = sin filtro
	CompanyID uint // 0 = sin filtro
}

type DailyBucket struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type PeriodBucket struct {
	Period  string  `json:"period"` // "2025-W03" o "2025-01"
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type Report struct {
	TotalRevenue     float64        `json:"total_revenue"`
	TotalProfit      float64        `json:"total_profit"`
	TotalMerma       int            `json:"total_merma"`
	SettlementCount  int            `json:"settlement_count"`
	DailyBreakdown   []DailyBucket  `json:"daily_breakdown"`
	WeeklyBreakdown  []PeriodBucket `json:"weekly_breakdown"`
	MonthlyBreakdown []PeriodBucket `json:"monthly_breakdown"`
}

type MermaCostLine struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	TotalCost   float64 `json:"total_cost"` // cantidad × precio de costo
}

func loadSettlements(db *gorm.DB, f Filter) ([]models.Settlement, error) {
	query := db.Preload("Assignment.Worker").
		Preload("Assignment.Product.Company").
		Preload("Assignment.MermaItems.Product")
	if f.From != nil {
		query = query.Where("settled_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("settled_at <= ?", *f.To)
	}

	var settlements []models.Settlement
	if err := query.Order("settled_at ASC").Find(&settlements).Error; err != nil {
		return nil, err
	}

	if f.WorkerID == 0 && f.CompanyID == 0 {
		return settlements, nil
	}
	filtered := settlements[:0]
	for _, s := range settlements {
		if f.WorkerID != 0 && s.Assignment.WorkerID != f.WorkerID {
			continue
		}
		if f.CompanyID != 0 && s.Assignment.Product.CompanyID != f.CompanyID {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered, nil
}

// profitOf: ganancia de una rendición = vendidas × (precio efectivo − costo).
// El precio efectivo respeta el precio especial de la asignación, igual que el
// monto a rendir.
func profitOf(s models.Settlement) decimal.Decimal {
	price := decimal.NewFromFloat(s.Assignment.EffectiveSalePrice())
	cost := decimal.NewFromFloat(s.Assignment.Product.CostPrice)
	return price.Sub(cost).Mul(decimal.NewFromInt(int64(s.TotalSold)))
}

// BuildReport deriva los totales y las series del período. Sin estado propio:
// se recalcula en cada lectura sobre el historial de rendiciones.
//
// El redondeo a 2 decimales se aplica una sola vez, en el bucket diario. Las
// series semanal (semana ISO, lunes) y mensual se obtienen SUMANDO los buckets
// diarios ya redondeados — nunca re-consultando — así los totales de cada nivel
// cuadran exactos entre sí.
func BuildReport(db *gorm.DB, loc *time.Location, f Filter) (*Report, error) {
	settlements, err := loadSettlements(db, f)
	if err != nil {
		return nil, err
	}

	dailyAcc := make(map[string]*moneyAcc)
	totalMerma := 0

	for _, s := range settlements {
		key := timeutil.DayKey(s.SettledAt, loc)
		a, ok := dailyAcc[key]
		if !ok {
			a = &moneyAcc{revenue: decimal.Zero, profit: decimal.Zero}
			dailyAcc[key] = a
		}
		a.revenue = a.revenue.Add(decimal.NewFromFloat(s.AmountDue))
		a.profit = a.profit.Add(profitOf(s))
		totalMerma += s.TotalMerma
	}

	days := make([]string, 0, len(dailyAcc))
	for k := range dailyAcc {
		days = append(days, k)
	}
	sort.Strings(days)

	daily := make([]DailyBucket, 0, len(days))
	weeklyAcc := make(map[string]*moneyAcc)
	monthlyAcc := make(map[string]*moneyAcc)
	totalRevenue := decimal.Zero
	totalProfit := decimal.Zero

	for _, day := range days {
		revenue := dailyAcc[day].revenue.Round(2)
		profit := dailyAcc[day].profit.Round(2)
		daily = append(daily, DailyBucket{
			Date:    day,
			Revenue: revenue.InexactFloat64(),
			Profit:  profit.InexactFloat64(),
		})

		d, _ := timeutil.ParseDate(day, loc)
		addToBucket(weeklyAcc, timeutil.ISOWeekKey(d, loc), revenue, profit)
		addToBucket(monthlyAcc, timeutil.MonthKey(d, loc), revenue, profit)

		totalRevenue = totalRevenue.Add(revenue)
		totalProfit = totalProfit.Add(profit)
	}

	return &Report{
		TotalRevenue:     totalRevenue.InexactFloat64(),
		TotalProfit:      totalProfit.InexactFloat64(),
		TotalMerma:       totalMerma,
		SettlementCount:  len(settlements),
		DailyBreakdown:   daily,
		WeeklyBreakdown:  toPeriodBuckets(weeklyAcc),
		MonthlyBreakdown: toPeriodBuckets(monthlyAcc),
	}, nil
}

func addToBucket(accMap map[string]*moneyAcc, key string, revenue, profit decimal.Decimal) {
	a, ok := accMap[key]
	if !ok {
		a = &moneyAcc{revenue: decimal.Zero, profit: decimal.Zero}
		accMap[key] = a
	}
	a.revenue = a.revenue.Add(revenue)
	a.profit = a.profit.Add(profit)
}

func toPeriodBuckets(accMap map[string]*moneyAcc) []PeriodBucket {
	keys := make([]string, 0, len(accMap))
	for k := range accMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]PeriodBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, PeriodBucket{
			Period:  k,
			Revenue: accMap[k].revenue.InexactFloat64(),
			Profit:  accMap[k].profit.InexactFloat64(),
		})
	}
	return buckets
}

// MermaCostReport agrupa la merma de las rendiciones filtradas por producto,
// valorizada al precio de costo.
func MermaCostReport(db *gorm.DB, f Filter) ([]MermaCostLine, error) {
	settlements, err := loadSettlements(db, f)
	if err != nil {
		return nil, err
	}

	type mermaAcc struct {
		name     string
		quantity int
		cost     decimal.Decimal
	}
	byProduct := make(map[uint]*mermaAcc)

	for _, s := range settlements {
		for _, m := range s.Assignment.MermaItems {
			a, ok := byProduct[m.ProductID]
			if !ok {
				a = &mermaAcc{name: m.Product.Name, cost: decimal.Zero}
				byProduct[m.ProductID] = a
			}
			a.quantity += m.Quantity
			a.cost = a.cost.Add(
				decimal.NewFromFloat(m.Product.CostPrice).Mul(decimal.NewFromInt(int64(m.Quantity))))
		}
	}

	ids := make([]uint, 0, len(byProduct))
	for id := range byProduct {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lines := make([]MermaCostLine, 0, len(ids))
	for _, id := range ids {
		a := byProduct[id]
		lines = append(lines, MermaCostLine{
			ProductID:   id,
			ProductName: a.name,
			Quantity:    a.quantity,
			TotalCost:   a.cost.Round(2).InexactFloat64(),
		})
	}
	return lines, nil
}
