package http

import (
	"errors"
	"net/http"

	"kitchen/internal/core/application/usecases/commands"
	"kitchen/internal/core/application/usecases/queries"
	"kitchen/internal/core/domain/model/kernel"
	"kitchen/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the checkout body. The restaurant comes from the token.
type PlaceOrderRequest struct {
	TableID      kernel.UUID         `json:"tableId"`
	Number       string              `json:"number"       validate:"max=32"`
	Instructions string              `json:"instructions" validate:"max=500"`
	Items        []PlaceOrderItemDTO `json:"items"        validate:"required,min=1,dive"`
}

type PlaceOrderItemDTO struct {
	MenuItemID   kernel.UUID     `json:"menuItemId"`
	Quantity     int             `json:"quantity"     validate:"gt=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Instructions string          `json:"instructions" validate:"max=500"`
}

// ClaimRequest optionally names the station the worker cooks at.
type ClaimRequest struct {
	Station *string `json:"station" validate:"omitempty,max=32"`
}

type ClaimResponse struct {
	Claimed bool `json:"claimed"`
}

type ReleaseResponse struct {
	Released bool `json:"released"`
}

type CompleteResponse struct {
	Completed bool `json:"completed"`
}

// PlaceOrder handles POST /api/v1/orders - checks out a table's order.
func (s *Server) PlaceOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return s.writeError(c, err, "failed to place order")
	}

	identity := identityFrom(c)
	items := make([]commands.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = commands.PlaceOrderItem{
			MenuItemID:   item.MenuItemID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Instructions: item.Instructions,
		}
	}

	cmd, err := commands.NewPlaceOrderCommand(
		kernel.NewUUID(), identity.RestaurantID, req.TableID, req.Number, req.Instructions, items,
	)
	if err != nil {
		if errors.Is(err, commands.ErrOrderHasNoItems) {
			return errorResponse(c, http.StatusBadRequest, err.Error())
		}
		return s.writeError(c, err, "failed to place order")
	}

	ctx := c.Request().Context()
	placed, err := s.handlers.PlaceOrder.Handle(ctx, cmd)
	if err != nil {
		return s.writeError(c, err, "failed to place order")
	}

	query, err := queries.NewGetOrderQuery(placed.ID(), identity.RestaurantID)
	if err != nil {
		return s.writeError(c, err, "failed to load order")
	}
	view, err := s.handlers.GetOrder.Handle(ctx, query)
	if err != nil {
		return s.writeError(c, err, "failed to load order")
	}
	return c.JSON(http.StatusCreated, view)
}

// GetPendingOrders handles GET /api/v1/orders/pending - open work of the caller's
// restaurant, oldest first.
func (s *Server) GetPendingOrders(c echo.Context) error {
	query, err := queries.NewGetPendingOrdersQuery(identityFrom(c).RestaurantID)
	if err != nil {
		return s.writeError(c, err, "failed to retrieve orders")
	}

	orders, err := s.handlers.GetPendingOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err, "failed to retrieve orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "order id")
	if err != nil {
		return s.writeError(c, err, "failed to retrieve order")
	}
	query, err := queries.NewGetOrderQuery(orderID, identityFrom(c).RestaurantID)
	if err != nil {
		return s.writeError(c, err, "failed to retrieve order")
	}

	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err, "failed to retrieve order")
	}
	return c.JSON(http.StatusOK, view)
}

// ClaimOrder handles POST /api/v1/orders/:id/claim.
func (s *Server) ClaimOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "order id")
	if err != nil {
		return s.writeError(c, err, "failed to claim order")
	}
	var req ClaimRequest
	if c.Request().ContentLength > 0 {
		if err = c.Bind(&req); err != nil {
			return errorResponse(c, http.StatusBadRequest, "invalid request body")
		}
		if err = c.Validate(&req); err != nil {
			return s.writeError(c, err, "failed to claim order")
		}
	}

	identity := identityFrom(c)
	cmd, err := commands.NewClaimOrderCommand(orderID, identity.WorkerID, identity.RestaurantID, req.Station)
	if err != nil {
		return s.writeError(c, err, "failed to claim order")
	}

	outcome, err := s.handlers.ClaimOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err, "failed to claim order")
	}
	switch outcome {
	case commands.Claimed:
		return c.JSON(http.StatusOK, ClaimResponse{Claimed: true})
	case commands.ClaimConflict:
		return errorResponse(c, http.StatusConflict, "already being prepared")
	case commands.ClaimNotFound:
		return errorResponse(c, http.StatusNotFound, "order not found")
	default:
		return s.writeError(c, errors.New("unknown claim outcome"), "failed to claim order")
	}
}

// ReleaseOrder handles POST /api/v1/orders/:id/release. Releasing an order the
// caller does not hold is not an error.
func (s *Server) ReleaseOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "order id")
	if err != nil {
		return s.writeError(c, err, "failed to release order")
	}
	cmd, err := commands.NewReleaseOrderCommand(orderID, identityFrom(c).WorkerID)
	if err != nil {
		return s.writeError(c, err, "failed to release order")
	}

	outcome, err := s.handlers.ReleaseOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err, "failed to release order")
	}
	return c.JSON(http.StatusOK, ReleaseResponse{Released: outcome == commands.Released})
}

// ServeOrder handles POST /api/v1/orders/:id/serve.
func (s *Server) ServeOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "order id")
	if err != nil {
		return s.writeError(c, err, "failed to serve order")
	}
	cmd, err := commands.NewServeOrderCommand(orderID, identityFrom(c).RestaurantID)
	if err != nil {
		return s.writeError(c, err, "failed to serve order")
	}

	if err = s.handlers.ServeOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeTransitionError(c, err, "failed to serve order")
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "order id")
	if err != nil {
		return s.writeError(c, err, "failed to cancel order")
	}
	cmd, err := commands.NewCancelOrderCommand(orderID, identityFrom(c).RestaurantID)
	if err != nil {
		return s.writeError(c, err, "failed to cancel order")
	}

	if err = s.handlers.CancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.writeTransitionError(c, err, "failed to cancel order")
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteItem handles POST /api/v1/items/:id/complete.
func (s *Server) CompleteItem(c echo.Context) error {
	itemID, err := pathUUID(c, "item id")
	if err != nil {
		return s.writeError(c, err, "failed to complete item")
	}
	cmd, err := commands.NewMarkItemCompletedCommand(itemID, identityFrom(c).WorkerID)
	if err != nil {
		return s.writeError(c, err, "failed to complete item")
	}

	outcome, err := s.handlers.CompleteItem.Handle(c.Request().Context(), cmd)
	switch {
	case outcome == commands.Completed:
		if err != nil {
			// The item is stored; order status catches up on retry or reconcile.
			s.logger.Warn().Err(err).Str("item_id", itemID.String()).Msg("order aggregation deferred")
		}
		return c.JSON(http.StatusOK, CompleteResponse{Completed: true})
	case err != nil:
		return s.writeError(c, err, "failed to complete item")
	case outcome == commands.CompleteUnauthorized:
		return errorResponse(c, http.StatusForbidden, "not your claim")
	case outcome == commands.CompleteNotFound:
		return errorResponse(c, http.StatusNotFound, "item not found")
	default:
		return s.writeError(c, errors.New("unknown completion outcome"), "failed to complete item")
	}
}

// writeTransitionError reports a forbidden status change as a conflict.
func (s *Server) writeTransitionError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, errs.ErrValueIsInvalid) {
		return errorResponse(c, http.StatusConflict, err.Error())
	}
	return s.writeError(c, err, fallback)
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
