package report

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
)

type orderRepo interface {
	ListCreatedBetween(ctx context.Context, start, end time.Time, status domain.OrderStatus) ([]domain.Order, error)
}

type Service struct {
	orders orderRepo
	loc    *time.Location
	logger *log.Logger
	now    func() time.Time
}

// New reports in loc, the fixed civil zone orders are bucketed by.
func New(orders orderRepo, loc *time.Location, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{orders: orders, loc: loc, logger: logger, now: time.Now}
}

// Query is the report filter as submitted by the admin form.
type Query struct {
	DateRange string `form:"dateRange" json:"dateRange"`
	Status    string `form:"status" json:"status"`
}

type Report struct {
	Summary
	DateRange       string `json:"dateRange"`
	Status          string `json:"status"`
	TodaySalesCents int64  `json:"todaySalesCents"`
}

// Sales builds the report for q. Today's sales ignore the status filter.
func (s *Service) Sales(ctx context.Context, q Query) (*Report, error) {
	now := s.now()
	rng, err := ParseRange(q.DateRange, now, s.loc)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(q.Status)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListCreatedBetween(ctx, rng.Start(), rng.End(), status)
	if err != nil {
		s.logger.Printf("report service: range=%s status=%s error=%v", rng, status, err)
		return nil, err
	}

	today := Today(now, s.loc)
	todays, err := s.orders.ListCreatedBetween(ctx, today.Start(), today.End(), "")
	if err != nil {
		return nil, err
	}

	label := string(status)
	if label == "" {
		label = "all"
	}
	return &Report{
		Summary:         Aggregate(orders, rng, s.loc),
		DateRange:       rng.String(),
		Status:          label,
		TodaySalesCents: Aggregate(todays, today, s.loc).TotalRevenueCents,
	}, nil
}

func parseStatus(s string) (domain.OrderStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return "", nil
	}
	st := domain.OrderStatus(s)
	if !st.Valid() {
		return "", domain.Invalid("Unknown order status.")
	}
	return st, nil
}
