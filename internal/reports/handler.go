package reports

import (
	"time"

	"trazzio-backend/internal/apperr"
	"trazzio-backend/internal/auth"
	"trazzio-backend/internal/config"
	"trazzio-backend/internal/database"
	"trazzio-backend/internal/timeutil"

	"github.com/gofiber/fiber/v2"
)

func filterFromQuery(c *fiber.Ctx, loc *time.Location) (Filter, error) {
	var f Filter

	if fromStr := c.Query("from"); fromStr != "" {
		d, err := timeutil.ParseDate(fromStr, loc)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "Fecha 'from' inválida (YYYY-MM-DD)")
		}
		f.From = &d
	}
	if toStr := c.Query("to"); toStr != "" {
		d, err := timeutil.EndOfDate(toStr, loc)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "Fecha 'to' inválida (YYYY-MM-DD)")
		}
		f.To = &d
	}

	f.WorkerID = uint(c.QueryInt("worker_id", 0))
	f.CompanyID = uint(c.QueryInt("company_id", 0))
	return f, nil
}

// GET /api/reports?from=&to=&worker_id=&company_id= (solo admin)
func ReportHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.ActorFromCtx(c); err != nil {
			return err
		}

		f, err := filterFromQuery(c, cfg.BusinessTZ)
		if err != nil {
			return err
		}

		report, err := BuildReport(database.DB, cfg.BusinessTZ, f)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(report)
	}
}

// GET /api/reports/merma — costo de merma por producto en el período (solo admin)
func MermaReportHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := auth.ActorFromCtx(c); err != nil {
			return err
		}

		f, err := filterFromQuery(c, cfg.BusinessTZ)
		if err != nil {
			return err
		}

		lines, err := MermaCostReport(database.DB, f)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(lines)
	}
}
