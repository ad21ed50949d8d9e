// Package order provides the Order aggregate of the kitchen domain: a table's checkout
// with its items, and the state machines that govern both.
//
// The package includes:
//   - Order: the aggregate root carrying restaurant, table, total and status
//   - Item: an order line that a single kitchen worker can claim and complete
//   - Status and ItemStatus: the order and item state machines
//
// Key business rules:
//   - Orders are created Pending with at least one Pending item
//   - Claiming takes every open item of the order at once and moves it to Preparing
//   - An item held by one worker cannot be claimed, released or completed by another
//   - Ready, Served and Cancelled orders accept no further claims
//   - Preparing returns to Pending only when every item is Pending again
//
// The aggregate never arbitrates between concurrent workers. Repositories persist
// planned changes with guarded writes, and the first writer wins.
package order
