// billing/billing.go
// Package billing estimates monthly charges for plans that include a number of free
// users and bill every user above that threshold at a fixed overage price.
package billing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MinorUnits is the number of minor units in one major currency unit.
const MinorUnits = 100

// Amount is a money value in minor units (øre, cents). Keeping amounts integral makes
// the overage arithmetic exact.
type Amount int64

// Major builds an Amount from a value in major units, rounding to the nearest minor unit.
func Major(v float64) Amount {
	return Amount(math.Round(v * MinorUnits))
}

// Float returns the amount in major units.
func (a Amount) Float() float64 {
	return float64(a) / MinorUnits
}

// Format renders the amount with locale grouping and up to two decimals, e.g. "2.4"
// or "8,467" for language.English.
func (a Amount) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(a.Float(), number.MaxFractionDigits(2)))
}

// FormatRounded renders the amount rounded to whole major units.
func (a Amount) FormatRounded(tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(math.Round(a.Float()), number.MaxFractionDigits(0)))
}

// Plan is a subscription tier.
type Plan struct {
	Name     string `json:"name" yaml:"name"`
	Currency string `json:"currency" yaml:"currency"`
	// FreeUsers is the number of monthly active users covered by MonthlyFee.
	FreeUsers    int64  `json:"freeUsers" yaml:"freeUsers"`
	MonthlyFee   Amount `json:"monthlyFee" yaml:"monthlyFee"`
	OveragePrice Amount `json:"overagePrice" yaml:"overagePrice"`
}

// EnterprisePlan bills every unique user at 2.40 DKK with no base fee.
var EnterprisePlan = Plan{
	Name:         "UTRY Enterprise",
	Currency:     "DKK",
	FreeUsers:    0,
	MonthlyFee:   0,
	OveragePrice: 240,
}

// ErrInvalidPlan is wrapped by every error Validate returns.
var ErrInvalidPlan = errors.New("invalid plan")

// Validate checks the currency code and that no amount or threshold is negative.
func (p Plan) Validate() error {
	if _, err := currency.ParseISO(p.Currency); err != nil {
		return fmt.Errorf("%w: currency %q: %v", ErrInvalidPlan, p.Currency, err)
	}
	if p.FreeUsers < 0 {
		return fmt.Errorf("%w: free users cannot be negative", ErrInvalidPlan)
	}
	if p.MonthlyFee < 0 || p.OveragePrice < 0 {
		return fmt.Errorf("%w: fees cannot be negative", ErrInvalidPlan)
	}
	return nil
}

// OverageUnits returns how many users are billed above the free threshold.
func (p Plan) OverageUnits(users int64) int64 {
	if users <= p.FreeUsers {
		return 0
	}
	return users - p.FreeUsers
}

// EstimateCost returns MonthlyFee when users <= FreeUsers, otherwise
// MonthlyFee + (users - FreeUsers) * OveragePrice.
func (p Plan) EstimateCost(users int64) Amount {
	return p.MonthlyFee + Amount(p.OverageUnits(users))*p.OveragePrice
}

// CostPerUser divides cost across users, rounding half away from zero to the nearest
// minor unit. It reports false when there are no users.
func CostPerUser(cost Amount, users int64) (Amount, bool) {
	if users <= 0 {
		return 0, false
	}
	q := int64(cost) / users
	r := int64(cost) % users
	if r < 0 {
		r = -r
	}
	if 2*r >= users {
		if cost < 0 {
			q--
		} else {
			q++
		}
	}
	return Amount(q), true
}

// MonthOverMonth returns the percentage change from previous to current. It reports
// false when previous is zero.
func MonthOverMonth(current, previous Amount) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return float64(current-previous) / float64(previous) * 100, true
}

// FormatChange renders a percentage change with an explicit sign and one decimal,
// e.g. "+6.7%".
func FormatChange(tag language.Tag, pct float64) string {
	p := message.NewPrinter(tag)
	s := p.Sprint(number.Decimal(math.Abs(pct), number.MaxFractionDigits(1), number.MinFractionDigits(1)))
	switch {
	case math.Round(pct*10) > 0:
		return "+" + s + "%"
	case math.Round(pct*10) < 0:
		return "-" + s + "%"
	default:
		return s + "%"
	}
}

// Estimate is one month's bill broken down.
type Estimate struct {
	Plan           Plan   `json:"plan"`
	Users          int64  `json:"users"`
	OverageUnits   int64  `json:"overageUnits"`
	Base           Amount `json:"base"`
	Overage        Amount `json:"overage"`
	Total          Amount `json:"total"`
	CostPerUser    Amount `json:"costPerUser"`
	HasCostPerUser bool   `json:"-"`
}

// Estimate breaks down the bill for users monthly active users.
func (p Plan) Estimate(users int64) Estimate {
	units := p.OverageUnits(users)
	total := p.EstimateCost(users)
	perUser, ok := CostPerUser(total, users)
	return Estimate{
		Plan:           p,
		Users:          users,
		OverageUnits:   units,
		Base:           p.MonthlyFee,
		Overage:        Amount(units) * p.OveragePrice,
		Total:          total,
		CostPerUser:    perUser,
		HasCostPerUser: ok,
	}
}

// Summary renders the estimate as the lines shown on the billing page.
func (e Estimate) Summary(tag language.Tag) string {
	p := message.NewPrinter(tag)
	cur := strings.ToUpper(e.Plan.Currency)

	var b strings.Builder
	fmt.Fprintf(&b, "Plan: %s\n", e.Plan.Name)
	fmt.Fprintf(&b, "Monthly active users: %s\n", p.Sprint(number.Decimal(e.Users)))
	fmt.Fprintf(&b, "Billable overage users: %s\n", p.Sprint(number.Decimal(e.OverageUnits)))
	fmt.Fprintf(&b, "Base fee: %s %s\n", e.Base.Format(tag), cur)
	fmt.Fprintf(&b, "Overage: %s %s\n", e.Overage.Format(tag), cur)
	fmt.Fprintf(&b, "Current month estimate: %s %s\n", e.Total.FormatRounded(tag), cur)
	if e.HasCostPerUser {
		fmt.Fprintf(&b, "Cost per unique user: %s %s\n", e.CostPerUser.Format(tag), cur)
	}
	return b.String()
}
