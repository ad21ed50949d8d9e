// Package cas implements guarded (compare-and-set) writes on top of gorm.
//
// A Guard lists the column predicates a row must still satisfy for the write to
// apply. Update and Delete report the number of rows they touched; zero means the
// guard no longer held because another writer changed the row first.
//
// Example:
//
//	guard := cas.Where(
//	    cas.Eq("order_id", orderID.Bytes()),
//	    cas.In("id", ids...),
//	    cas.IsNull("claimed_by"),
//	    cas.Eq("status", "pending"),
//	)
//	n, err := cas.Update(ctx, tx, &OrderItemDTO{}, guard, map[string]any{"status": "claimed"})
package cas

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnguarded is returned for a write without predicates.
var ErrUnguarded = errors.New("cas: guard has no predicates")

// Guard is an immutable conjunction of column predicates.
type Guard struct {
	exprs []clause.Expression
}

// Where builds a guard from predicates.
func Where(exprs ...clause.Expression) Guard {
	return Guard{exprs: append([]clause.Expression(nil), exprs...)}
}

// And returns a new guard with extra predicates.
func (g Guard) And(exprs ...clause.Expression) Guard {
	merged := make([]clause.Expression, 0, len(g.exprs)+len(exprs))
	merged = append(merged, g.exprs...)
	merged = append(merged, exprs...)
	return Guard{exprs: merged}
}

// Empty reports whether the guard has no predicates.
func (g Guard) Empty() bool {
	return len(g.exprs) == 0
}

func (g Guard) expression() clause.Expression {
	return clause.And(g.exprs...)
}

// Scope applies the guard as a plain WHERE, for reads that must see the same rows
// a guarded write would touch.
//
//	db.Model(&OrderItemDTO{}).Scopes(guard.Scope).Pluck("id", &ids)
func (g Guard) Scope(db *gorm.DB) *gorm.DB {
	return db.Where(g.expression())
}

func Eq(column string, value any) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: column}, Value: value}
}

func IsNull(column string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: column}, Value: nil}
}

func Gte(column string, value any) clause.Expression {
	return clause.Gte{Column: clause.Column{Name: column}, Value: value}
}

func Lt(column string, value any) clause.Expression {
	return clause.Lt{Column: clause.Column{Name: column}, Value: value}
}

func In(column string, values ...any) clause.Expression {
	return clause.IN{Column: clause.Column{Name: column}, Values: values}
}

// Update applies patch to the rows of model's table that satisfy the guard.
// An IN predicate with no values matches nothing.
func Update(ctx context.Context, db *gorm.DB, model any, guard Guard, patch map[string]any) (int64, error) {
	if guard.Empty() {
		return 0, ErrUnguarded
	}

	result := db.WithContext(ctx).Model(model).Where(guard.expression()).Updates(patch)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete removes the rows of model's table that satisfy the guard.
func Delete(ctx context.Context, db *gorm.DB, model any, guard Guard) (int64, error) {
	if guard.Empty() {
		return 0, ErrUnguarded
	}

	result := db.WithContext(ctx).Where(guard.expression()).Delete(model)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
