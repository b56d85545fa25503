package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

const dayLayout = "2006-01-02"

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	case "":
		return PeriodDay, nil
	default:
		return "", fmt.Errorf("%w: unknown period %q", ErrValidation, s)
	}
}

type Bucket struct {
	Label          string  `json:"label"`
	Revenue        float64 `json:"revenue"`
	Orders         int     `json:"orders"`
	BookingRevenue float64 `json:"booking_revenue"`
	Bookings       int     `json:"bookings"`
}

type RevenueReport struct {
	Period           Period    `json:"period"`
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	Buckets          []Bucket  `json:"buckets"`
	TotalRevenue     float64   `json:"total_revenue"`
	TotalOrders      int       `json:"total_orders"`
	BookingRevenue   float64   `json:"booking_revenue"`
	TotalBookings    int       `json:"total_bookings"`
	FoodRevenue      float64   `json:"food_revenue"`
	AccessoryRevenue float64   `json:"accessory_revenue"`
}

type Dashboard struct {
	Revenue        *RevenueReport               `json:"revenue"`
	StatusCounts   map[models.OrderStatus]int64 `json:"status_counts"`
	LowStock       []repo.LowStockItem          `json:"low_stock"`
	StockRefreshed bool                         `json:"stock_refreshed"`
}

type ReportService struct {
	Repo              *repo.GormRepo
	Maintenance       *MaintenanceService
	Location          *time.Location
	LowStockThreshold int
	Now               func() time.Time
}

type window struct {
	from, to time.Time
	labels   []string
	labelOf  func(t time.Time) string
}

func (s *ReportService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.loc())
	}
	return time.Now().In(s.loc())
}

func mondayOf(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

// buildWindow returns the trailing bucket series ending with the bucket
// that contains now.
func buildWindow(p Period, now time.Time) window {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var w window
	switch p {
	case PeriodWeek:
		monday := mondayOf(now)
		w.from, w.to = monday.AddDate(0, 0, -21), monday.AddDate(0, 0, 7)
		for d := w.from; d.Before(w.to); d = d.AddDate(0, 0, 7) {
			w.labels = append(w.labels, d.Format(dayLayout))
		}
		w.labelOf = func(t time.Time) string { return mondayOf(t.In(loc)).Format(dayLayout) }
	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		w.from, w.to = first.AddDate(0, -11, 0), first.AddDate(0, 1, 0)
		for d := w.from; d.Before(w.to); d = d.AddDate(0, 1, 0) {
			w.labels = append(w.labels, d.Format("2006-01"))
		}
		w.labelOf = func(t time.Time) string { return t.In(loc).Format("2006-01") }
	case PeriodYear:
		jan := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		w.from, w.to = jan.AddDate(-4, 0, 0), jan.AddDate(1, 0, 0)
		for d := w.from; d.Before(w.to); d = d.AddDate(1, 0, 0) {
			w.labels = append(w.labels, d.Format("2006"))
		}
		w.labelOf = func(t time.Time) string { return t.In(loc).Format("2006") }
	default:
		w.from, w.to = today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)
		for d := w.from; d.Before(w.to); d = d.AddDate(0, 0, 1) {
			w.labels = append(w.labels, d.Format(dayLayout))
		}
		w.labelOf = func(t time.Time) string { return t.In(loc).Format(dayLayout) }
	}
	return w
}

type sums struct {
	amount map[string]decimal.Decimal
	count  map[string]int
}

func newSums() sums {
	return sums{amount: map[string]decimal.Decimal{}, count: map[string]int{}}
}

func (s sums) add(label string, v float64) {
	s.amount[label] = s.amount[label].Add(decimal.NewFromFloat(v))
	s.count[label]++
}

// bucketize sums rows per bucket. Weekly series are summed per day first
// and then folded into Monday-aligned weeks.
func bucketize(p Period, w window, rows []repo.RevenueRow) sums {
	if p != PeriodWeek {
		out := newSums()
		for _, r := range rows {
			out.add(w.labelOf(r.CreatedAt), r.Total)
		}
		return out
	}

	loc := w.from.Location()
	days := newSums()
	for _, r := range rows {
		days.add(r.CreatedAt.In(loc).Format(dayLayout), r.Total)
	}

	weeks := newSums()
	for day, amt := range days.amount {
		d, err := time.ParseInLocation(dayLayout, day, loc)
		if err != nil {
			continue
		}
		label := mondayOf(d).Format(dayLayout)
		weeks.amount[label] = weeks.amount[label].Add(amt)
		weeks.count[label] += days.count[day]
	}
	return weeks
}

func (s *ReportService) Revenue(ctx context.Context, p Period) (*RevenueReport, error) {
	w := buildWindow(p, s.now())

	var orders, bookings []repo.RevenueRow
	var lines []repo.LineRevenueRow
	var foodIDs, accessoryIDs map[uuid.UUID]struct{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { orders, err = s.Repo.CompletedOrderTotals(gctx, w.from, w.to); return })
	g.Go(func() (err error) { bookings, err = s.Repo.CompletedBookingTotals(gctx, w.from, w.to); return })
	g.Go(func() (err error) { lines, err = s.Repo.CompletedOrderLines(gctx, w.from, w.to); return })
	g.Go(func() (err error) { foodIDs, err = s.Repo.CatalogIDs(gctx, models.KindFood); return })
	g.Go(func() (err error) { accessoryIDs, err = s.Repo.CatalogIDs(gctx, models.KindAccessory); return })
	if err := g.Wait(); err != nil {
		return nil, storeErr("revenue report", err)
	}

	productSums := bucketize(p, w, orders)
	bookingSums := bucketize(p, w, bookings)

	rep := &RevenueReport{Period: p, From: w.from, To: w.to, Buckets: make([]Bucket, 0, len(w.labels))}
	var total, bookingTotal decimal.Decimal
	for _, label := range w.labels {
		pa, ba := productSums.amount[label], bookingSums.amount[label]
		rep.Buckets = append(rep.Buckets, Bucket{
			Label:          label,
			Revenue:        pa.Round(2).InexactFloat64(),
			Orders:         productSums.count[label],
			BookingRevenue: ba.Round(2).InexactFloat64(),
			Bookings:       bookingSums.count[label],
		})
		total = total.Add(pa)
		bookingTotal = bookingTotal.Add(ba)
		rep.TotalOrders += productSums.count[label]
		rep.TotalBookings += bookingSums.count[label]
	}
	rep.TotalRevenue = total.Round(2).InexactFloat64()
	rep.BookingRevenue = bookingTotal.Round(2).InexactFloat64()

	var food, accessory decimal.Decimal
	for _, li := range lines {
		_, inFood := foodIDs[li.ProductID]
		_, inAccessory := accessoryIDs[li.ProductID]
		switch {
		case inFood && !inAccessory && li.ProductType == models.KindFood:
			food = food.Add(decimal.NewFromFloat(li.Amount))
		case inAccessory && !inFood && li.ProductType == models.KindAccessory:
			accessory = accessory.Add(decimal.NewFromFloat(li.Amount))
		}
	}
	rep.FoodRevenue = food.Round(2).InexactFloat64()
	rep.AccessoryRevenue = accessory.Round(2).InexactFloat64()
	return rep, nil
}

// Dashboard refreshes stock when no other sweep is running and then
// gathers the admin overview.
func (s *ReportService) Dashboard(ctx context.Context, p Period) (*Dashboard, error) {
	d := &Dashboard{}

	if s.Maintenance != nil {
		_, err := s.Maintenance.RecomputeRemainingStock(ctx)
		switch {
		case err == nil:
			d.StockRefreshed = true
		case errors.Is(err, ErrSweepInProgress):
		default:
			logging.FromContext(ctx).Warn("dashboard_stock_refresh_error", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { d.Revenue, err = s.Revenue(gctx, p); return })
	g.Go(func() error {
		counts, err := s.Repo.CountOrdersByStatus(gctx)
		if err != nil {
			return storeErr("count orders", err)
		}
		d.StatusCounts = counts
		return nil
	})
	g.Go(func() error {
		low, err := s.Repo.LowStock(gctx, s.LowStockThreshold)
		if err != nil {
			return storeErr("low stock", err)
		}
		d.LowStock = low
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
