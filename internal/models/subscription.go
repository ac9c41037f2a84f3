package models

import "time"

type SubscriptionPlan string

const (
	SubscriptionPlanDaily   SubscriptionPlan = "daily"
	SubscriptionPlanWeekly  SubscriptionPlan = "weekly"
	SubscriptionPlanMonthly SubscriptionPlan = "monthly"
)

type planTerms struct {
	days  int
	price float64
}

var subscriptionPlans = map[SubscriptionPlan]planTerms{
	SubscriptionPlanDaily:   {days: 1, price: 49},
	SubscriptionPlanWeekly:  {days: 7, price: 299},
	SubscriptionPlanMonthly: {days: 30, price: 999},
}

func (p SubscriptionPlan) IsValid() bool {
	_, ok := subscriptionPlans[p]
	return ok
}

// Duration is the validity window bought by the plan.
func (p SubscriptionPlan) Duration() time.Duration {
	return time.Duration(subscriptionPlans[p].days) * 24 * time.Hour
}

func (p SubscriptionPlan) Price() float64 {
	return subscriptionPlans[p].price
}

// ExpiryFrom returns the expiry of a plan bought at from.
func (p SubscriptionPlan) ExpiryFrom(from time.Time) time.Time {
	return from.AddDate(0, 0, subscriptionPlans[p].days)
}
