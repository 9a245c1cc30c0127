// Package jobs holds scheduled background work.
package jobs

import (
	"fmt"
	"time"

	"toko-bangunan-pos/internal/service"
	"toko-bangunan-pos/internal/ws"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// LowStockAlert scans for products at or under their minimum stock on a
// cron schedule, logs them and pushes a low_stock_alert to the dashboard.
type LowStockAlert struct {
	cronScheduler *cron.Cron
	stock         service.StockService
	wsHub         *ws.Hub
	log           *logrus.Logger
	schedule      string
	jobID         cron.EntryID
}

// NewLowStockAlert uses the standard five-field cron format, evaluated in loc.
func NewLowStockAlert(stockService service.StockService, hub *ws.Hub, log *logrus.Logger, schedule string, loc *time.Location) *LowStockAlert {
	if loc == nil {
		loc = time.Local
	}
	return &LowStockAlert{
		cronScheduler: cron.New(cron.WithLocation(loc)),
		stock:         stockService,
		wsHub:         hub,
		log:           log,
		schedule:      schedule,
	}
}

func (j *LowStockAlert) Start() error {
	var err error
	j.jobID, err = j.cronScheduler.AddFunc(j.schedule, func() {
		if _, err := j.Run(); err != nil {
			j.log.WithError(err).Error("low stock scan failed")
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling low stock job: %w", err)
	}

	j.cronScheduler.Start()
	j.log.WithField("schedule", j.schedule).Info("low stock alert scheduler started")
	return nil
}

// Stop waits for a running scan to finish.
func (j *LowStockAlert) Stop() {
	if j.cronScheduler == nil {
		return
	}
	<-j.cronScheduler.Stop().Done()
	j.log.Info("low stock alert scheduler stopped")
}

// Next is when the scan fires next; zero before Start.
func (j *LowStockAlert) Next() time.Time {
	return j.cronScheduler.Entry(j.jobID).Next
}

// Run performs one scan and returns how many products are low.
func (j *LowStockAlert) Run() (int, error) {
	items, err := j.stock.LowStock()
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		j.log.Debug("low stock scan: nothing to report")
		return 0, nil
	}

	data := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		j.log.WithFields(logrus.Fields{
			"sku":       item.SKU,
			"stock":     item.Stock.String(),
			"min_stock": item.MinStock.String(),
			"urgency":   item.Urgency,
		}).Warn("product low on stock")
		data = append(data, map[string]interface{}{
			"id":           item.ID,
			"sku":          item.SKU,
			"name":         item.Name,
			"stock":        item.Stock,
			"min_stock":    item.MinStock,
			"base_unit":    item.BaseUnit,
			"stock_status": item.StockStatus,
			"urgency":      item.Urgency,
		})
	}

	j.wsHub.Publish(ws.Event{
		Type:    ws.EventLowStockAlert,
		Action:  "scheduled_scan",
		Data:    data,
		Message: fmt.Sprintf("%d products at or below minimum stock", len(items)),
	})
	return len(items), nil
}
