package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"gatepass/internal/audit"
	"gatepass/internal/auth"
	driverhandler "gatepass/internal/driver/handler"
	driverservice "gatepass/internal/driver/service"
	driverstore "gatepass/internal/driver/store"
	gatehandler "gatepass/internal/gate/handler"
	gateservice "gatepass/internal/gate/service"
	gatestore "gatepass/internal/gate/store"
	httptransport "gatepass/internal/http"
	ledgerhandler "gatepass/internal/ledger/handler"
	ledgerservice "gatepass/internal/ledger/service"
	ledgerstore "gatepass/internal/ledger/store"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/httpserver"
	"gatepass/internal/platform/kafka"
	"gatepass/internal/platform/logger"
	"gatepass/internal/platform/postgres"
	platformredis "gatepass/internal/platform/redis"
	"gatepass/internal/policy"
	"gatepass/internal/transaction"
	transactionhandler "gatepass/internal/transaction/handler"
	userhandler "gatepass/internal/user/handler"
	usermodels "gatepass/internal/user/models"
	userservice "gatepass/internal/user/service"
	userstore "gatepass/internal/user/store"
	vehiclecache "gatepass/internal/vehicle/cache"
	vehiclehandler "gatepass/internal/vehicle/handler"
	vehicleservice "gatepass/internal/vehicle/service"
	vehiclestore "gatepass/internal/vehicle/store"

	"github.com/google/uuid"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		return err
	}

	stores := buildStores(db)
	vehicles := stores.vehicles
	if redisClient != nil {
		vehicles = vehiclecache.New(vehicles, redisClient.Client, log)
	}

	auditSvc := audit.NewService(stores.audit, log)
	vehicleSvc := vehicleservice.New(vehicles, stores.ledger, auditSvc, vehicleservice.WithLogger(log))
	driverSvc := driverservice.New(stores.drivers, log)
	gateSvc := gateservice.New(stores.gates, log)
	userSvc := userservice.New(stores.users, log)
	ledgerSvc := ledgerservice.New(stores.ledger, vehicles, log)

	validator := policy.NewGateAccessValidator(stores.gates)
	processorOpts := []transaction.Option{
		transaction.WithLogger(log),
		transaction.WithStoreTimeout(cfg.StoreTimeout),
	}
	if publisher != nil {
		processorOpts = append(processorOpts, transaction.WithPublisher(publisher))
	}
	processor := transaction.NewProcessor(vehicles, stores.ledger, validator, processorOpts...)

	if err := ensureAdmin(ctx, stores.users, log); err != nil {
		return err
	}

	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSigningKey), cfg.TokenTTL)

	var health []httptransport.Health
	if db != nil {
		health = append(health, dbHealth{db})
	}
	if redisClient != nil {
		health = append(health, redisHealth{redisClient})
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Auth:         auth.NewHandler(userSvc, issuer),
		AuthMW:       auth.Middleware(issuer),
		Vehicles:     vehiclehandler.New(vehicleSvc),
		Drivers:      driverhandler.New(driverSvc),
		Gates:        gatehandler.New(gateSvc),
		Users:        userhandler.New(userSvc),
		Ledger:       ledgerhandler.New(ledgerSvc),
		Transactions: transactionhandler.New(processor),
		Audit:        audit.NewHandler(auditSvc),
		HealthChecks: health,
	})

	srv := httpserver.New(cfg.Addr, router)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting gatepass", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if publisher != nil {
			if err := publisher.Close(shutdownCtx); err != nil {
				log.Warn("kafka close failed", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

type storeSet struct {
	vehicles vehiclestore.Store
	drivers  driverstore.Store
	gates    gatestore.Store
	users    userstore.Store
	ledger   ledgerstore.Store
	audit    audit.Store
}

func buildStores(db *sql.DB) storeSet {
	if db == nil {
		return storeSet{
			vehicles: vehiclestore.NewInMemory(),
			drivers:  driverstore.NewInMemory(),
			gates:    gatestore.NewInMemory(),
			users:    userstore.NewInMemory(),
			ledger:   ledgerstore.NewInMemory(),
			audit:    audit.NewInMemoryStore(),
		}
	}
	return storeSet{
		vehicles: vehiclestore.NewPostgres(db),
		drivers:  driverstore.NewPostgres(db),
		gates:    gatestore.NewPostgres(db),
		users:    userstore.NewPostgres(db),
		ledger:   ledgerstore.NewPostgres(db),
		audit:    audit.NewPostgresStore(db),
	}
}

// ensureAdmin seeds a super-admin account on an empty user store so a fresh
// deployment can log in at all.
func ensureAdmin(ctx context.Context, users userstore.Store, log *slog.Logger) error {
	existing, err := users.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	password := os.Getenv("GATEPASS_ADMIN_PASSWORD")
	if password == "" {
		password = "change-me-now"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := &usermodels.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         policy.RoleSuperAdmin,
		Status:       usermodels.UserActive,
	}
	if err := users.Create(ctx, u); err != nil {
		return err
	}
	log.Warn("seeded default super-admin account, change its password", "username", u.Username)
	return nil
}

type dbHealth struct{ db *sql.DB }

func (h dbHealth) Name() string                      { return "postgres" }
func (h dbHealth) Healthy(ctx context.Context) error { return h.db.PingContext(ctx) }

type redisHealth struct{ client *platformredis.Client }

func (h redisHealth) Name() string                      { return "redis" }
func (h redisHealth) Healthy(ctx context.Context) error { return h.client.Health(ctx) }
