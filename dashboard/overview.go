// dashboard/overview.go
/* Package dashboard assembles the overview page of the try-on dashboard: the try-on and
active product totals for a month and the daily usage series, fetched concurrently from
the backend through the authenticated client. */
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/httpclient"
	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Backend routes read by the overview.
const (
	PathCalculations        = "/api/Dashboard/GetCalculations"
	PathActiveProductsCount = "/api/Dashboard/GetActiveProductsCount"
	PathTriesPerMonth       = "/api/Dashboard/GetTriesPerMonth"
)

// API is the part of *httpclient.Client the overview needs.
type API interface {
	Get(ctx context.Context, path string, query httpclient.Query, out any, opts ...httpclient.RequestOption) error
	ReauthURL(authErr *httpclient.AuthError) string
}

// MetricCard is one headline figure.
type MetricCard struct {
	Title    string `json:"title"`
	Value    string `json:"value"`
	Subtitle string `json:"subtitle"`
	Tooltip  string `json:"tooltip"`
}

// Overview is the assembled overview page. When the backend rejected the session,
// only RedirectURL is set.
type Overview struct {
	From           time.Time    `json:"from"`
	To             time.Time    `json:"to"`
	Period         string       `json:"period"`
	TotalUsers     int64        `json:"totalUsers"`
	TotalTryOns    int64        `json:"totalTryOns"`
	ActiveProducts int64        `json:"activeProducts"`
	Daily          []DailyPoint `json:"daily"`
	Cards          []MetricCard `json:"cards,omitempty"`
	RedirectURL    string       `json:"redirectUrl,omitempty"`
}

// NeedsReauth reports whether the merchant must be sent through OAuth again.
func (o *Overview) NeedsReauth() bool {
	return o != nil && o.RedirectURL != ""
}

// Service fetches overview data.
type Service struct {
	api    API
	logger logger.Logger
	lang   language.Tag
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLanguage sets the locale used to format card values.
func WithLanguage(tag language.Tag) ServiceOption {
	return func(s *Service) {
		s.lang = tag
	}
}

// NewService builds an overview service on top of api.
func NewService(api API, log logger.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Service{api: api, logger: log, lang: language.English}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview loads the month containing from. The three backend calls run concurrently
// and the first failure cancels the others.
//
// An authentication failure is not an error: the returned Overview carries the
// reauthorization URL instead. Cancellation returns an error matching context.Canceled
// (or context.DeadlineExceeded) that callers treat as a no-op.
func (s *Service) Overview(ctx context.Context, from time.Time) (*Overview, error) {
	start, end := MonthRange(from)
	window := httpclient.Query{"from": start, "to": end}

	var calculations, activeCount, tries any

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.api.Get(gctx, PathCalculations, window, &calculations)
	})
	g.Go(func() error {
		return s.api.Get(gctx, PathActiveProductsCount, nil, &activeCount)
	})
	g.Go(func() error {
		return s.api.Get(gctx, PathTriesPerMonth, window, &tries)
	})

	if err := g.Wait(); err != nil {
		if authErr, ok := httpclient.AsAuthError(err); ok {
			redirect := s.api.ReauthURL(authErr)
			s.logger.Info("Overview requires reauthorization", zap.String("shop", authErr.Shop), zap.String("redirect_url", redirect))
			return &Overview{RedirectURL: redirect}, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.Error("Overview fetch failed", zap.Error(err))
		return nil, err
	}

	o := &Overview{
		From:           start,
		To:             end,
		Period:         PeriodLabel(start),
		TotalUsers:     fieldInt(calculations, "totalUsers"),
		TotalTryOns:    fieldInt(calculations, "totalTryOns"),
		ActiveProducts: intValue(activeCount),
		Daily:          dailyPoints(tries),
	}
	o.Cards = s.cards(o)
	return o, nil
}

func (s *Service) cards(o *Overview) []MetricCard {
	return []MetricCard{
		{
			Title:    "Total Try-Ons",
			Value:    FormatCount(s.lang, o.TotalTryOns),
			Subtitle: o.Period,
			Tooltip:  "Total number of virtual try-on sessions across all products in the selected date range",
		},
		{
			Title:    "Active Products",
			Value:    FormatCount(s.lang, o.ActiveProducts),
			Subtitle: o.Period,
			Tooltip:  "Total number of products currently available for virtual try-on across both VTO and VDR",
		},
	}
}

// FormatCount renders n with the locale's grouping separators.
func FormatCount(tag language.Tag, n int64) string {
	return message.NewPrinter(tag).Sprint(number.Decimal(n))
}
