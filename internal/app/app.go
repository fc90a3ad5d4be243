package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/pocopan-pos/internal/cfg"
	v1Grpc "github.com/DRSN-tech/pocopan-pos/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/pocopan-pos/internal/delivery/v1/http"
	"github.com/DRSN-tech/pocopan-pos/internal/infrastructure/kafka"
	"github.com/DRSN-tech/pocopan-pos/internal/infrastructure/spreadsheet"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/pocopan-pos/internal/repository/minio"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/pocopan-pos/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/redis"
	redisConv "github.com/DRSN-tech/pocopan-pos/internal/repository/redis/converter"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/clients"
	"github.com/DRSN-tech/pocopan-pos/pkg/closer"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/keylock"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/DRSN-tech/pocopan-pos/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	forcedTimeout   = 3 * time.Second
	healthInterval  = 15 * time.Second
	topicTimeout    = 10 * time.Second
)

// storage — набор репозиториев выбранного бэкенда.
type storage struct {
	backend  string
	tx       usecase.Transactor
	counters usecase.CounterRepository
	sales    usecase.SaleRepository
	outbox   usecase.OutboxRepository
	products usecase.ProductRepository
	carts    usecase.CartRepository
	sessions usecase.SessionRepository
	cache    usecase.CacheRepository
	reports  usecase.ReportRepository
	worker   *kafka.OutboxWorker
}

type App struct {
	cfg       *config.Config
	logger    logger.Logger
	closer    *closer.Closer
	storage   *storage
	httpSrv   *v1Http.Server
	grpcSrv   *v1Grpc.GRPCServer
	dashboard usecase.DashboardUC
	cancel    context.CancelFunc
	bgCtx     context.Context
}

// NewApp поднимает хранилище и собирает usecase'ы и транспорт.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	bgCtx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(forcedTimeout),
		bgCtx:  bgCtx,
		cancel: cancel,
	}

	initCtx, initCancel := context.WithTimeout(bgCtx, initTimeout)
	defer initCancel()

	var (
		st  *storage
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		st, err = a.initMemory(initCtx)
	default:
		st, err = a.initPostgres(initCtx)
	}
	if err != nil {
		a.shutdown()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.storage = st

	if err := st.counters.EnsureTerminals(initCtx, cfg.POS.Terminals.WithAggregate()); err != nil {
		a.shutdown()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	uc := a.initUseCases(st)
	if cfg.Backend == config.BackendMemory {
		seedCatalog(initCtx, uc.Catalog, log)
	}

	router := v1Http.NewRouter(chi.NewRouter(), log)
	a.httpSrv = v1Http.NewServer(router.Init(uc), cfg.Http)
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.dashboard = uc.Dashboard

	return a, nil
}

func (a *App) initPostgres(ctx context.Context) (*storage, error) {
	db, err := postgres.Connect(ctx, a.cfg.Db)
	if err != nil {
		a.logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	if err := db.RunMigrations(a.logger); err != nil {
		a.logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio, s3Repo.ExportsPrefix); err != nil {
		a.logger.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// Топик может создать администратор кластера, продажи от этого не зависят
		a.logger.Warnf("failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
	}

	outbox := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})

	listener := pgdb.NewOutboxListener(db.Pool)
	a.closer.Add("outbox listener", func(context.Context) error {
		listener.Close()
		return nil
	})

	worker := kafka.NewOutboxWorker(outbox, producer, listener, kafka.DefaultWorkerOptions(), a.logger)

	return &storage{
		backend:  config.BackendPostgres,
		tx:       pgdb.NewTxManager(db.Pool, a.cfg.POS.LockTimeout),
		counters: pgdb.NewCounterRepo(db.Pool, pgdbConv.TerminalCounterConverter{}),
		sales:    pgdb.NewSaleRepo(db.Pool, pgdbConv.SaleLineConverter{}),
		outbox:   outbox,
		products: pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{}),
		carts:    redis.NewCartRepo(redisClient, redisConv.CartConverter{}, a.cfg.SessionTTL()),
		sessions: redis.NewSessionRepo(redisClient, redisConv.SessionConverter{}),
		cache:    redis.NewCacheRepo(redisClient, redisConv.ProductConverter{}, a.cfg.Redis.ProductTTL, a.logger),
		reports:  s3Repo.NewReportRepo(minioClient, a.cfg.Minio),
		worker:   worker,
	}, nil
}

func (a *App) initMemory(context.Context) (*storage, error) {
	a.logger.Warnf("using in-memory storage, data will be lost on restart")

	store := memory.NewStore()
	return &storage{
		backend:  memory.Backend,
		tx:       store,
		counters: store.Counters(),
		sales:    store.Sales(),
		outbox:   store.Outbox(),
		products: store.Products(),
		carts:    store.Carts(),
		sessions: store.Sessions(),
		cache:    store.Cache(),
		reports:  store.Reports(),
	}, nil
}

func (a *App) initUseCases(st *storage) v1Http.UseCases {
	pos := a.cfg.POS
	catalog := usecase.NewCatalogUC(st.products, st.cache, pos.SearchLimit, a.logger)

	return v1Http.UseCases{
		Auth:    usecase.NewAuthUC(pos.Users, st.sessions, a.cfg.SessionTTL(), a.logger),
		Catalog: catalog,
		Cart: usecase.NewCartUC(st.carts, catalog, usecase.CartOptions{
			TaxRate:     pos.TaxRate,
			MaxItems:    pos.MaxCartItems,
			MaxQuantity: pos.MaxQuantity,
		}, a.logger),
		Sale: usecase.NewSaleUC(
			st.tx,
			st.counters,
			st.sales,
			st.carts,
			st.outbox,
			keylock.NewLocker(pos.LockTimeout),
			pos.Terminals,
			usecase.SaleOptions{TaxRate: pos.TaxRate, MaxQuantity: pos.MaxQuantity},
			a.logger,
		),
		Dashboard: usecase.NewDashboardUC(st.sales, st.products, pos.Terminals, usecase.DashboardOptions{
			Currency: pos.Currency,
			Backend:  st.backend,
			Users:    pos.Users,
		}, a.logger),
		Export: usecase.NewExportUC(st.sales, spreadsheet.NewLedgerWorkbook(), st.reports, pos.Terminals, pos.Company, a.logger),
	}
}

// Run запускает серверы и блокируется до сигнала остановки или падения сервера.
func (a *App) Run() error {
	if a.storage.worker != nil {
		a.storage.worker.Start(a.bgCtx)
		a.closer.Add("outbox worker", func(ctx context.Context) error {
			a.cancel()
			return a.storage.worker.Wait(ctx)
		})
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()
	go a.grpcSrv.MonitorHealth(a.bgCtx, func(ctx context.Context) error {
		_, err := a.dashboard.Diagnostics(ctx)
		return err
	}, healthInterval)
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s, storage: %s", a.cfg.Http.Port, a.storage.backend)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()
	a.closer.Add("http server", a.httpSrv.Stop)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("Received %s, stopping gracefully...", sig)
	}

	if err := a.shutdown(); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		if appErr == nil {
			appErr = err
		}
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer a.cancel()

	return a.closer.Close(ctx)
}

// sampleCatalog совпадает с начальными данными миграций PostgreSQL.
var sampleCatalog = []usecase.ProductReq{
	{Name: "Cajas Verdes GRANJA ANIMALES DINOS", Category: "Ingenio", Subcategory: "Madera Ingenio", UnitPrice: decimal.RequireFromString("25000.00"), Supplier: "Proveedor A"},
	{Name: "Pezca Gusanos", Category: "Ingenio", Subcategory: "Madera Ingenio", UnitPrice: decimal.RequireFromString("30800.00"), Supplier: "Proveedor B"},
	{Name: "Juego de Mesa Clásico", Category: "Juego Meza", Subcategory: "Estrategia", UnitPrice: decimal.RequireFromString("15500.00"), Supplier: "Proveedor C"},
	{Name: "Rompecabezas 1000 Piezas", Category: "Puzzle", Subcategory: "Educativo", UnitPrice: decimal.RequireFromString("12000.00"), Supplier: "Proveedor D"},
	{Name: "Muñeco Coleccionable", Category: "Figuras", Subcategory: "Acción", UnitPrice: decimal.RequireFromString("8900.00"), Supplier: "Proveedor E"},
}

func seedCatalog(ctx context.Context, catalog usecase.CatalogUC, log logger.Logger) {
	for i := range sampleCatalog {
		if _, err := catalog.CreateProduct(ctx, &sampleCatalog[i]); err != nil {
			log.Warnf("failed to seed product %s: %v", sampleCatalog[i].Name, err)
		}
	}
}
