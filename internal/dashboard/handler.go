package dashboard

import (
	"trazzio-backend/internal/config"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/models"
	"trazzio-backend/internal/timeutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type LowStockProduct struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	CompanyName   string `json:"company_name"`
	Stock         int    `json:"stock"`
	LowStockAlert int    `json:"low_stock_alert"`
}

type WorkerRevenue struct {
	WorkerID   uint    `json:"worker_id"`
	WorkerName string  `json:"worker_name"`
	Revenue    float64 `json:"revenue"`
}

type DashboardResponse struct {
	SettledToday     int               `json:"settled_today"`
	TotalRevenue     float64           `json:"total_revenue"`
	TotalProfit      float64           `json:"total_profit"`
	PendingWorkers   int               `json:"pending_workers"`
	TotalWorkers     int64             `json:"total_workers"`
	LowStockProducts []LowStockProduct `json:"low_stock_products"`
	WorkerRevenues   []WorkerRevenue   `json:"worker_revenues"`
}

// GET /api/dashboard (solo admin) — resumen del día del negocio.
func DashboardHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to := timeutil.TodayBounds(cfg.BusinessTZ)

		var settlements []models.Settlement
		if err := database.DB.Preload("Assignment.Worker").
			Preload("Assignment.Product").
			Where("settled_at >= ? AND settled_at <= ?", from, to).
			Find(&settlements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo armar el resumen del día")
		}

		type workerAcc struct {
			name    string
			revenue decimal.Decimal
		}

		revenue := decimal.Zero
		profit := decimal.Zero
		revenueByWorker := make(map[uint]*workerAcc)
		for _, s := range settlements {
			due := decimal.NewFromFloat(s.AmountDue)
			revenue = revenue.Add(due)

			price := decimal.NewFromFloat(s.Assignment.EffectiveSalePrice())
			cost := decimal.NewFromFloat(s.Assignment.Product.CostPrice)
			profit = profit.Add(price.Sub(cost).Mul(decimal.NewFromInt(int64(s.TotalSold))))

			// Se acumula en decimal y se redondea una sola vez al final,
			// igual que los buckets diarios de los reportes.
			wr, ok := revenueByWorker[s.Assignment.WorkerID]
			if !ok {
				wr = &workerAcc{name: s.Assignment.Worker.Name, revenue: decimal.Zero}
				revenueByWorker[s.Assignment.WorkerID] = wr
			}
			wr.revenue = wr.revenue.Add(due)
		}

		// Trabajadores distintos con asignaciones aún sin rendir hoy
		var pendingWorkers int64
		database.DB.Model(&models.Assignment{}).
			Where("status = ? AND date >= ? AND date <= ?", models.AssignmentPending, from, to).
			Distinct("worker_id").
			Count(&pendingWorkers)

		var totalWorkers int64
		database.DB.Model(&models.Worker{}).Count(&totalWorkers)

		var lowStock []models.Product
		database.DB.Preload("Company").
			Where("stock <= low_stock_alert").
			Order("stock ASC").
			Limit(5).
			Find(&lowStock)

		lowStockResp := make([]LowStockProduct, 0, len(lowStock))
		for _, p := range lowStock {
			lowStockResp = append(lowStockResp, LowStockProduct{
				ID:            p.ID,
				Name:          p.Name,
				CompanyName:   p.Company.Name,
				Stock:         p.Stock,
				LowStockAlert: p.LowStockAlert,
			})
		}

		workerRevenues := make([]WorkerRevenue, 0, len(revenueByWorker))
		for id, wr := range revenueByWorker {
			workerRevenues = append(workerRevenues, WorkerRevenue{
				WorkerID:   id,
				WorkerName: wr.name,
				Revenue:    wr.revenue.Round(2).InexactFloat64(),
			})
		}

		return c.JSON(DashboardResponse{
			SettledToday:     len(settlements),
			TotalRevenue:     revenue.Round(2).InexactFloat64(),
			TotalProfit:      profit.Round(2).InexactFloat64(),
			PendingWorkers:   int(pendingWorkers),
			TotalWorkers:     totalWorkers,
			LowStockProducts: lowStockResp,
			WorkerRevenues:   workerRevenues,
		})
	}
}
