// Package billing runs the periodic billing sweep over the subscription store.
//
// The scheduler has two jobs per sweep: renew every active auto-renewing
// subscription whose next billing date has arrived, and surface subscriptions
// that will lapse soon without renewing. It never transitions a record to
// expired on its own; lapsed subscriptions are reported to the notifier and
// left for an operator to act on.
//
// Each record in a sweep is processed independently. One failed renewal is
// counted and logged; it does not stop or roll back the rest of the batch.
package billing
