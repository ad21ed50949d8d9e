package ports_test

import (
	"testing"

	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/core/ports"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Matches(t *testing.T) {
	restaurant := kernel.NewUUID()
	event := ports.Event{Table: ports.TableOrders, Op: ports.OpUpdate, RecordID: kernel.NewUUID(), RestaurantID: restaurant}
	other := kernel.NewUUID()

	assert.True(t, ports.Filter{}.Matches(event))
	assert.True(t, ports.Filter{Table: ports.TableOrders, RestaurantID: &restaurant}.Matches(event))
	assert.False(t, ports.Filter{Table: ports.TableSessions}.Matches(event))
	assert.False(t, ports.Filter{RestaurantID: &other}.Matches(event))
}
