package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-tryon-dashboard-client/billing"
	"github.com/spf13/cobra"
)

func newBillingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing and usage estimates",
	}
	cmd.AddCommand(newBillingEstimateCmd(a))
	return cmd
}

func newBillingEstimateCmd(a *app) *cobra.Command {
	var (
		users        int64
		planName     string
		currencyCode string
		freeUsers    int64
		monthlyFee   float64
		overagePrice float64
		previous     float64
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate this month's cost for a number of monthly active users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if users < 0 {
				return errors.New("--users cannot be negative")
			}
			lang, err := a.language()
			if err != nil {
				return err
			}

			plan := billing.EnterprisePlan
			flags := cmd.Flags()
			if flags.Changed("plan-name") {
				plan.Name = planName
			}
			if flags.Changed("currency") {
				plan.Currency = strings.ToUpper(currencyCode)
			}
			if flags.Changed("free-users") {
				plan.FreeUsers = freeUsers
			}
			if flags.Changed("monthly-fee") {
				plan.MonthlyFee = billing.Major(monthlyFee)
			}
			if flags.Changed("overage-price") {
				plan.OveragePrice = billing.Major(overagePrice)
			}
			if err := plan.Validate(); err != nil {
				return err
			}

			estimate := plan.Estimate(users)

			var change *float64
			if flags.Changed("previous") {
				if pct, ok := billing.MonthOverMonth(estimate.Total, billing.Major(previous)); ok {
					change = &pct
				}
			}

			if asJSON || a.opts.Query != "" {
				return a.writeJSON(struct {
					billing.Estimate
					ChangePercent *float64 `json:"changePercent,omitempty"`
				}{estimate, change})
			}

			if _, err := fmt.Fprint(a.out, estimate.Summary(lang)); err != nil {
				return err
			}
			if flags.Changed("previous") {
				fmt.Fprintf(a.out, "Previous month: %s %s\n", billing.Major(previous).FormatRounded(lang), plan.Currency)
				if change != nil {
					fmt.Fprintf(a.out, "%s vs prior month\n", billing.FormatChange(lang, *change))
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&users, "users", 0, "monthly active users")
	f.StringVar(&planName, "plan-name", billing.EnterprisePlan.Name, "plan name")
	f.StringVar(&currencyCode, "currency", billing.EnterprisePlan.Currency, "ISO 4217 currency code")
	f.Int64Var(&freeUsers, "free-users", billing.EnterprisePlan.FreeUsers, "users included in the monthly fee")
	f.Float64Var(&monthlyFee, "monthly-fee", billing.EnterprisePlan.MonthlyFee.Float(), "monthly base fee in major units")
	f.Float64Var(&overagePrice, "overage-price", billing.EnterprisePlan.OveragePrice.Float(), "price per user above the free threshold, in major units")
	f.Float64Var(&previous, "previous", 0, "previous month's total, to print the month over month change")
	f.BoolVar(&asJSON, "json", false, "print the estimate as JSON")
	_ = cmd.MarkFlagRequired("users")
	return cmd
}
