// Package revenue computes read-only revenue statistics over the
// subscription store: totals and distributions, monthly recurring revenue,
// and churn. All figures are derived from the stored records at call time;
// nothing here mutates a subscription.
package revenue
