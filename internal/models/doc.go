// Package models defines the core domain models for the Xquisito table backend.
//
// # Current Models
//
// The following models are actively used:
//   - DishOrder: one billable line item ordered by one guest at a table
//   - CartItem: an unsubmitted cart line, priced once at submission time
//   - TableSummary: derived table-level totals (total, paid, remaining)
//   - Participant: a guest or authenticated user attached to a table
//   - SplitSession / SplitShare: an active equal division of the remaining balance
//   - ChargeRequest: the tip/tax/commission breakdown for a single charge
//
// Guests are identified by a guest ID issued with their table session; authenticated
// users additionally carry a user ID. Display names are cosmetic and are NOT unique.
//
// # Design Principles
//
// 1. **Immutable pricing**: DishOrder.TotalPrice is computed once at submission and
// never edited; only PaymentStatus and Status mutate afterwards.
//
// 2. **Derived aggregates**: TableSummary is recomputed from the ledger on demand,
// never stored; the server-side summary wins over any locally derived one.
//
// 3. **Avoid circular references**: models reference each other by ID strings.
//
// 4. **Closed enums**: payment status, kitchen status and split strategy are typed
// string enums; unknown values are rejected at the transport boundary.
package models
