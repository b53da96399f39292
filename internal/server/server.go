// Package server wires the whole application together: config, stores,
// workers, routes, and the HTTP/gRPC listeners.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkamalov/bazar/app/controllers"
	appgraphql "github.com/mkamalov/bazar/app/graphql"
	"github.com/mkamalov/bazar/app/jobs"
	"github.com/mkamalov/bazar/app/listeners"
	"github.com/mkamalov/bazar/app/routes"
	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/config"
	"github.com/mkamalov/bazar/pkg/cache"
	"github.com/mkamalov/bazar/pkg/database"
	bazargrpc "github.com/mkamalov/bazar/pkg/grpc"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/metrics"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/mkamalov/bazar/pkg/queue"
	"github.com/mkamalov/bazar/pkg/reqid"
	"github.com/mkamalov/bazar/pkg/router"
	"github.com/mkamalov/bazar/pkg/schedule"
	"github.com/mkamalov/bazar/pkg/session"
	"github.com/mkamalov/bazar/pkg/storage"
	"github.com/mkamalov/bazar/pkg/workerpool"
	"github.com/mkamalov/bazar/pkg/ws"
)

const queueWorkers = 4

// Boot prepares shared infrastructure: config, logging, database,
// cache, storage and the queue registry. Both serve and the worker
// commands call it.
func Boot(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}

	if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
		if _, err := logger.AttachMongoSink(uri, config.Get("LOG_MONGO_DB", "bazar"), "logs"); err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, falling back where possible", "error", err)
	}
	storage.Connect()

	jobs.RegisterAll()
	if cache.Client() != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.Client()))
	}
	queue.UseDB(database.DB)

	return nil
}

// Run starts the full application and blocks until SIGINT/SIGTERM.
func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Boot(ctx); err != nil {
		return err
	}
	defer database.Close() //nolint:errcheck
	defer cache.Close()    //nolint:errcheck

	queue.StartWorkers(ctx, queueWorkers)

	hub := ws.NewHub()
	go hub.Run()

	broker := services.NewOrderEventBroker()
	broker.Attach()

	pool := workerpool.New(8)
	defer pool.Shutdown()
	listeners.Register(database.DB, pool)

	orderSvc := services.NewOrderService(database.DB)
	registerSchedule(ctx, orderSvc)
	schedule.Start(ctx)

	r, err := buildRouter(orderSvc, broker, hub)
	if err != nil {
		return err
	}

	grpcSrv, _, err := bazargrpc.Start(config.GRPCPort())
	if err != nil {
		return err
	}
	defer bazargrpc.Stop(grpcSrv)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// BuildRouter constructs the fully wired route table without starting
// listeners; route:list uses it.
func BuildRouter() (*router.Router, error) {
	hub := ws.NewHub()
	broker := services.NewOrderEventBroker()
	return buildRouter(services.NewOrderService(database.DB), broker, hub)
}

func buildRouter(orderSvc *services.OrderService, broker *services.OrderEventBroker, hub *ws.Hub) (*router.Router, error) {
	db := database.DB

	authSvc := services.NewAuthService(db)
	categorySvc := services.NewCategoryService(db)
	productSvc := services.NewProductService(db)
	reviewSvc := services.NewReviewService(db)
	chatSvc := services.NewChatService(db, hub)

	catalog, err := appgraphql.NewCatalog(productSvc, categorySvc)
	if err != nil {
		return nil, err
	}

	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		session.Middleware(session.DefaultOptions()),
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(300, time.Minute),
	)

	routes.Register(r, routes.Controllers{
		Auth:       controllers.NewAuthController(authSvc),
		Categories: controllers.NewCategoryController(categorySvc),
		Products:   controllers.NewProductController(productSvc),
		Orders:     controllers.NewOrderController(orderSvc, broker),
		Reviews:    controllers.NewReviewController(reviewSvc),
		Chats:      controllers.NewChatController(chatSvc, hub),
		Catalog:    catalog,
	})
	return r, nil
}

// RegisterSchedule mounts the recurring housekeeping tasks standalone;
// the schedule:run command uses it, serve wires the same tasks itself.
func RegisterSchedule(ctx context.Context) {
	registerSchedule(ctx, services.NewOrderService(database.DB))
}

func registerSchedule(ctx context.Context, orderSvc *services.OrderService) {
	schedule.Every(5).Minutes().
		Name("orders.expire_pending").
		WithoutOverlapping().
		Run(func() {
			ttl := config.PendingOrderTTL()
			n, err := orderSvc.ExpirePending(ctx, ttl)
			if err != nil {
				logger.Error("pending order expiry failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("expired pending orders", "count", n, "ttl", ttl.String())
			}
		})
}
