package handler

import (
	"context"
	"fmt"

	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/core/service"
)

type GRPCHandler struct {
	orders    *service.OrderService
	lifecycle *service.OrderLifecycle
}

func NewGRPCHandler(orders *service.OrderService, lifecycle *service.OrderLifecycle) *GRPCHandler {
	return &GRPCHandler{orders: orders, lifecycle: lifecycle}
}

func callerFrom(ctx context.Context) (domain.Identity, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return domain.Identity{}, grpcError(fmt.Errorf("%w: missing identity", domain.ErrUnauthorized))
	}
	return id, nil
}

func (h *GRPCHandler) PlaceOrder(ctx context.Context, req *PlaceOrderRPCRequest) (*PlaceOrderResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, grpcError(validationError(err))
	}

	order, replayed, err := h.orders.PlaceOrderOnce(ctx, caller.UserID, req.IdempotencyKey, toLines(req.Items))
	if err != nil {
		return nil, grpcError(err)
	}
	return &PlaceOrderResponse{Order: orderResponse(*order), Replayed: replayed}, nil
}

func (h *GRPCHandler) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	order, err := h.orders.GetOrderFor(ctx, caller, req.ID)
	if err != nil {
		return nil, grpcError(err)
	}
	resp := orderResponse(*order)
	return &resp, nil
}

func (h *GRPCHandler) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := h.orders.ListOrders(ctx, caller, service.ParseStatus(req.Status))
	if err != nil {
		return nil, grpcError(err)
	}
	return &ListOrdersResponse{Orders: orderResponses(orders)}, nil
}

func (h *GRPCHandler) ChangeStatus(ctx context.Context, req *ChangeStatusRequest) (*OrderResponse, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, grpcError(fmt.Errorf("%w: only admins can change order status", domain.ErrForbidden))
	}
	order, err := h.lifecycle.ChangeStatus(ctx, req.ID, service.ParseStatus(req.Status))
	if err != nil {
		return nil, grpcError(err)
	}
	resp := orderResponse(*order)
	return &resp, nil
}
