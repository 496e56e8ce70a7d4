package handler

import (
	"context"

	"google.golang.org/grpc"
)

const orderServiceName = "shop.v1.OrderService"

type GetOrderRequest struct {
	ID string `json:"id"`
}

type ListOrdersRequest struct {
	Status string `json:"status"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type ChangeStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PlaceOrderRPCRequest carries an optional idempotency key next to the items.
type PlaceOrderRPCRequest struct {
	IdempotencyKey string             `json:"idempotency_key"`
	Items          []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type PlaceOrderResponse struct {
	Order    OrderResponse `json:"order"`
	Replayed bool          `json:"replayed"`
}

// OrderServiceServer is the server API for the order service.
type OrderServiceServer interface {
	PlaceOrder(context.Context, *PlaceOrderRPCRequest) (*PlaceOrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*OrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	ChangeStatus(context.Context, *ChangeStatusRequest) (*OrderResponse, error)
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&orderServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(OrderServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrderServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + orderServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(OrderServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var orderServiceDesc = grpc.ServiceDesc{
	ServiceName: orderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("PlaceOrder", OrderServiceServer.PlaceOrder),
		unaryHandler("GetOrder", OrderServiceServer.GetOrder),
		unaryHandler("ListOrders", OrderServiceServer.ListOrders),
		unaryHandler("ChangeStatus", OrderServiceServer.ChangeStatus),
	},
	Streams: []grpc.StreamDesc{},
}
