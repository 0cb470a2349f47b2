// Package ledger derives table-level aggregates from the dish-order ledger.
//
// Everything here is pure: callers pass the current ledger snapshot in and
// are responsible for re-fetching after every mutation and on view entry
// (the refresh contract is pull-based; there is no push mechanism).
package ledger

import (
	"github.com/XquisitoAI/xquisito-backend/internal/models"
	"github.com/XquisitoAI/xquisito-backend/internal/money"
)

// ComputeAggregate sums the ledger snapshot into a TableSummary.
//
// amountPaid covers table-level amount payments (full-bill and
// choose-amount charges) that are not attributable to specific dishes;
// pass 0 when summarizing dish orders alone.
func ComputeAggregate(tableID string, orders []models.DishOrder, amountPaid float64) models.TableSummary {
	summary := models.TableSummary{TableID: tableID}
	for _, o := range orders {
		summary.TotalAmount += o.TotalPrice
		summary.ItemCount++
		if o.PaymentStatus == models.PaymentPaid {
			summary.PaidAmount += o.TotalPrice
		}
	}
	summary.PaidAmount += amountPaid
	if summary.PaidAmount > summary.TotalAmount {
		summary.PaidAmount = summary.TotalAmount
	}
	summary.RemainingAmount = money.Sub(summary.TotalAmount, summary.PaidAmount)
	summary.Status = statusOf(summary)
	return summary
}

// Reconcile picks between a locally derived aggregate and a server-supplied
// summary. The server wins whenever present: multiple devices mutate the
// same table concurrently, so the local snapshot can be stale the instant
// another device pays. Local is the fallback for offline derivation only.
func Reconcile(local models.TableSummary, server *models.TableSummary) models.TableSummary {
	if server != nil {
		return *server
	}
	return local
}

// UnpaidDishes filters the snapshot down to dishes still owed.
func UnpaidDishes(orders []models.DishOrder) []models.DishOrder {
	var unpaid []models.DishOrder
	for _, o := range orders {
		if o.PaymentStatus != models.PaymentPaid {
			unpaid = append(unpaid, o)
		}
	}
	return unpaid
}

// DistinctPayers returns the distinct payer names among the given dishes,
// in first-seen order.
func DistinctPayers(orders []models.DishOrder) []string {
	seen := make(map[string]bool, len(orders))
	var names []string
	for _, o := range orders {
		if o.PayerName == "" || seen[o.PayerName] {
			continue
		}
		seen[o.PayerName] = true
		names = append(names, o.PayerName)
	}
	return names
}

func statusOf(s models.TableSummary) models.TableStatus {
	switch {
	case s.TotalAmount > 0 && s.RemainingAmount == 0:
		return models.TablePaid
	case s.PaidAmount > 0:
		return models.TablePartial
	default:
		return models.TableNotPaid
	}
}
