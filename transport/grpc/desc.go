package grpc

import (
	"context"

	googrpc "google.golang.org/grpc"
)

// exchangeServiceDesc is a hand-written grpc.ServiceDesc standing in for
// protoc-generated registration code. Each handler decodes its request
// through the codec registered on the server (jsonCodec), dispatches to
// the matching Gateway method, and hands the response back the same way
// generated code would — this is the wiring protoc-gen-go-grpc would
// otherwise produce.
var exchangeServiceDesc = googrpc.ServiceDesc{
	ServiceName: "fenrir.exchange.Exchange",
	HandlerType: (*any)(nil),
	Methods: []googrpc.MethodDesc{
		{
			MethodName: "NewOrder",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor googrpc.UnaryServerInterceptor) (any, error) {
				in := new(NewOrderRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				g := srv.(*Gateway)
				if interceptor == nil {
					return g.NewOrder(ctx, in)
				}
				info := &googrpc.UnaryServerInfo{Server: g, FullMethod: "/fenrir.exchange.Exchange/NewOrder"}
				handler := func(ctx context.Context, req any) (any, error) {
					return g.NewOrder(ctx, req.(*NewOrderRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "CancelOrder",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor googrpc.UnaryServerInterceptor) (any, error) {
				in := new(CancelOrderRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				g := srv.(*Gateway)
				if interceptor == nil {
					return g.CancelOrder(ctx, in)
				}
				info := &googrpc.UnaryServerInfo{Server: g, FullMethod: "/fenrir.exchange.Exchange/CancelOrder"}
				handler := func(ctx context.Context, req any) (any, error) {
					return g.CancelOrder(ctx, req.(*CancelOrderRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "Quote",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor googrpc.UnaryServerInterceptor) (any, error) {
				in := new(QuoteRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				g := srv.(*Gateway)
				if interceptor == nil {
					return g.Quote(ctx, in)
				}
				info := &googrpc.UnaryServerInfo{Server: g, FullMethod: "/fenrir.exchange.Exchange/Quote"}
				handler := func(ctx context.Context, req any) (any, error) {
					return g.Quote(ctx, req.(*QuoteRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []googrpc.StreamDesc{},
	Metadata: "fenrir/exchange.proto",
}
