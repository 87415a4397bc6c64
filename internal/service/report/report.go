// Package report builds the admin sales report: a per-civil-day series over a
// date range plus product and status breakdowns, all computed from orders on
// every request.
package report

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"storefront/internal/domain"
)

const (
	dateLayout      = "2006-01-02"
	defaultLookback = 30
	bestSellerCount = 5
)

// Range is an inclusive span of civil days in a fixed location.
type Range struct {
	StartDate time.Time
	EndDate   time.Time
}

// Start is local midnight of the first day.
func (r Range) Start() time.Time {
	return r.StartDate
}

// End is the last representable millisecond of the final day.
func (r Range) End() time.Time {
	return r.EndDate.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// String renders the range the way ParseRange accepts it.
func (r Range) String() string {
	return r.StartDate.Format(dateLayout) + " to " + r.EndDate.Format(dateLayout)
}

// Days lists every civil day of the range as YYYY-MM-DD.
func (r Range) Days() []string {
	var days []string
	for d := r.StartDate; !d.After(r.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dateLayout))
	}
	return days
}

// ParseRange reads "YYYY-MM-DD to YYYY-MM-DD" or a single date. An empty
// input selects the trailing 30 days ending today in loc.
func ParseRange(s string, now time.Time, loc *time.Location) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		today := civilDay(now, loc)
		return Range{StartDate: today.AddDate(0, 0, -defaultLookback), EndDate: today}, nil
	}
	startStr, endStr, found := strings.Cut(s, " to ")
	if !found || strings.TrimSpace(endStr) == "" {
		endStr = startStr
	}
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(startStr), loc)
	if err != nil {
		return Range{}, domain.Invalid("Invalid date range.")
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(endStr), loc)
	if err != nil {
		return Range{}, domain.Invalid("Invalid date range.")
	}
	if start.After(end) {
		return Range{}, domain.Invalid("Start date must not be after end date.")
	}
	return Range{StartDate: start, EndDate: end}, nil
}

// Today is the single-day range containing now.
func Today(now time.Time, loc *time.Location) Range {
	d := civilDay(now, loc)
	return Range{StartDate: d, EndDate: d}
}

func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

type DailySales struct {
	Date       string `json:"date"`
	Orders     int    `json:"orders"`
	SalesCents int64  `json:"salesCents"`
}

type ProductSales struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	RevenueCents int64  `json:"revenueCents"`
}

// Summary is the deterministic fold of one order set over one range.
type Summary struct {
	Daily             []DailySales               `json:"dailySales"`
	BestSellers       []ProductSales             `json:"bestSellers"`
	ProductsSold      []ProductSales             `json:"productsSold"`
	StatusCounts      map[domain.OrderStatus]int `json:"statusCounts"`
	TotalRevenueCents int64                      `json:"totalRevenueCents"`
	TotalOrders       int                        `json:"totalOrders"`
}

// Aggregate buckets orders by their civil day in loc. Orders falling outside
// rng are skipped.
func Aggregate(orders []domain.Order, rng Range, loc *time.Location) Summary {
	days := rng.Days()
	index := make(map[string]int, len(days))
	daily := make([]DailySales, len(days))
	for i, d := range days {
		index[d] = i
		daily[i] = DailySales{Date: d}
	}

	sum := Summary{StatusCounts: make(map[domain.OrderStatus]int, len(domain.OrderStatuses))}
	for _, st := range domain.OrderStatuses {
		sum.StatusCounts[st] = 0
	}

	products := map[string]*ProductSales{}
	for _, o := range orders {
		i, ok := index[o.CreatedAt.In(loc).Format(dateLayout)]
		if !ok {
			continue
		}
		daily[i].Orders++
		daily[i].SalesCents += o.TotalCents
		sum.TotalOrders++
		sum.TotalRevenueCents += o.TotalCents
		sum.StatusCounts[o.Status]++

		for _, line := range o.Items {
			p, ok := products[line.ProductID]
			if !ok {
				p = &ProductSales{ProductID: line.ProductID, Name: line.Name}
				products[line.ProductID] = p
			}
			p.Quantity += line.Quantity
			p.RevenueCents += line.SubtotalCents
		}
	}
	sum.Daily = daily

	all := make([]ProductSales, 0, len(products))
	for _, p := range products {
		all = append(all, *p)
	}

	sum.ProductsSold = slices.Clone(all)
	slices.SortFunc(sum.ProductsSold, func(a, b ProductSales) int {
		return cmpOr(
			cmp.Compare(b.RevenueCents, a.RevenueCents),
			cmp.Compare(b.Quantity, a.Quantity),
			cmp.Compare(a.Name, b.Name),
		)
	})

	slices.SortFunc(all, func(a, b ProductSales) int {
		return cmpOr(
			cmp.Compare(b.Quantity, a.Quantity),
			cmp.Compare(b.RevenueCents, a.RevenueCents),
			cmp.Compare(a.Name, b.Name),
		)
	})
	if len(all) > bestSellerCount {
		all = all[:bestSellerCount]
	}
	sum.BestSellers = all
	return sum
}

// cmpOr mirrors cmp.Or (Go 1.22+): it returns the first of vals that is not
// the zero value, or zero if all are.
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
