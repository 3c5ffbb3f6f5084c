// Package models defines the core domain records of the ledger.
//
// # Records
//
//   - Group: a currency and the members sharing costs in it
//   - Expense: one shared cost, paid by one member and divided into Splits
//   - ExpenseTombstone: what a deleted expense looked like, for auditing
//   - Settlement: a payment from one member to another
//
// # Derived values
//
// GroupBalance, SuggestedPayment, Explanation and LedgerAudit are computed
// on demand by the calculator package and never persisted.
//
// # Design Principles
//
// 1. **Integer money**: every amount is a money.Amount in minor units of the
// group currency. Decimal values exist only at the API boundary.
// 2. **Avoid circular references**: records point at each other by ID string.
// 3. **Ledger is the source of truth**: balances are always recomputed from
// expenses and settlements; there is no stored running balance.
package models
