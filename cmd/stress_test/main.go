package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/rl1809/shop/internal/adapter/handler"
	"github.com/rl1809/shop/internal/adapter/storage"
	"github.com/rl1809/shop/internal/core/domain"
	"github.com/rl1809/shop/internal/core/service"
)

const (
	productID     = "flash-sale-item"
	initialStock  = 20
	totalRequests = 50
)

type placeFunc func(ctx context.Context, i int) error

func main() {
	target := flag.String("grpc", "", "gRPC address of a running server; empty runs in-process")
	token := flag.String("token", "", "bearer token used against -grpc")
	product := flag.String("product", "", "product id to order against -grpc")
	flag.Parse()

	ctx := context.Background()

	var (
		place      placeFunc
		finalStock func() int64
		stock      = int64(initialStock)
	)

	if *target == "" {
		store := storage.NewMemoryAdapter()
		now := time.Now()
		if err := store.CreateProduct(ctx, domain.Product{
			ID: productID, Name: "Flash Sale Item", PriceCents: 999,
			Stock: initialStock, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			log.Fatalf("failed to create product: %v", err)
		}
		orders := service.NewOrderService(store, store, nil)
		place = func(ctx context.Context, i int) error {
			_, err := orders.PlaceOrder(ctx, fmt.Sprintf("user-%d", i),
				[]domain.OrderLine{{ProductID: productID, Quantity: 1}})
			return err
		}
		finalStock = func() int64 {
			p, err := store.GetProduct(ctx, productID)
			if err != nil || p == nil {
				return -1
			}
			return p.Stock
		}
	} else {
		if *token == "" || *product == "" {
			log.Fatal("-token and -product are required with -grpc")
		}
		conn, err := grpc.NewClient(*target, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatalf("failed to connect: %v", err)
		}
		defer conn.Close()
		client := handler.NewOrderClient(conn)
		authCtx := handler.WithBearer(ctx, *token)
		stock = -1
		place = func(_ context.Context, i int) error {
			_, err := client.PlaceOrder(authCtx, &handler.PlaceOrderRPCRequest{
				IdempotencyKey: fmt.Sprintf("stress-%d-%d", time.Now().UnixNano(), i),
				Items:          []handler.OrderLineRequest{{ProductID: *product, Quantity: 1}},
			})
			return err
		}
		finalStock = func() int64 { return -1 }
	}

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			err := place(ctx, i)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock),
				status.Code(err) == codes.FailedPrecondition:
				soldOutCount.Add(1)
			default:
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	soldOut := soldOutCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	if stock >= 0 {
		fmt.Printf("Initial Stock:    %d\n", stock)
	}
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOut)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if stock < 0 {
		return
	}

	if success == int32(stock) && soldOut == int32(totalRequests-stock) {
		fmt.Printf("PASS: Exactly %d orders succeeded, %d sold out\n", stock, totalRequests-stock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d sold out, got %d/%d\n",
			stock, totalRequests-stock, success, soldOut)
	}

	if remaining := finalStock(); remaining == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", remaining)
	}
}
