package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/menyraclub/menyra/internal/call"
	"github.com/menyraclub/menyra/internal/demo"
	"github.com/menyraclub/menyra/internal/guest"
	"github.com/menyraclub/menyra/internal/menu"
	"github.com/menyraclub/menyra/internal/mongo"
	"github.com/menyraclub/menyra/internal/order"
	"github.com/menyraclub/menyra/internal/redis"
	"github.com/menyraclub/menyra/internal/staff"
	"github.com/menyraclub/menyra/internal/tenant"
	"github.com/menyraclub/menyra/pkg"
)

const (
	appNamespace = "MENYRA"
	appName      = "menyra"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	restaurantRepo := mongo.NewRestaurantRepo(db)
	menuItemRepo := mongo.NewMenuItemRepo(db)
	offerRepo := mongo.NewOfferRepo(db)
	commentRepo := mongo.NewCommentRepo(db)
	orderRepo := mongo.NewOrderRepo(db)
	callRepo := mongo.NewCallRepo(db)

	type indexed interface {
		EnsureIndexes(ctx context.Context) error
	}
	for _, repo := range []indexed{restaurantRepo, menuItemRepo, offerRepo, commentRepo, orderRepo, callRepo} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("%s(%s) cannot create indexes: %v", appName, appVersion, err)
		}
	}

	redisURL := config.GetStringOrDef("cache.redis.url", "redis://localhost:6379")
	kv, err := redis.NewKV(redisURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot configure redis: %v", appName, appVersion, err)
	}
	if err := kv.Start(ctx); err != nil {
		log.Fatalf("%s(%s) cannot connect to redis: %v", appName, appVersion, err)
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	orderFeed := order.NewFeed(logger)
	orderSub := order.NewEventSubscriber(sub, orderFeed, logger)

	callFeed := call.NewFeed(logger)
	callSub := call.NewEventSubscriber(sub, callFeed, logger)

	carts := guest.NewCartStore(kv)
	likes := guest.NewLikeStore(kv)
	auth := staff.NewAuthenticator(restaurantRepo, kv)

	tenantHandler := tenant.NewHandler(restaurantRepo, config, logger)
	menuHandler := menu.NewHandler(menu.HandlerDeps{
		ItemRepo:  menuItemRepo,
		OfferRepo: offerRepo,
	}, config, logger)
	staffHandler := staff.NewHandler(auth, config, logger)
	orderHandler := order.NewHandler(orderRepo, orderFeed, pub, config, logger)
	callHandler := call.NewHandler(callRepo, callFeed, pub, config, logger)
	guestHandler := guest.NewHandler(guest.HandlerDeps{
		Restaurants: restaurantRepo,
		Items:       menuItemRepo,
		Offers:      offerRepo,
		Comments:    commentRepo,
		Orders:      orderRepo,
		Calls:       callRepo,
		Carts:       carts,
		Likes:       likes,
		OrderFeed:   orderFeed,
		CallFeed:    callFeed,
		Publisher:   pub,
	}, config, logger)

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	demoEnabled, _ := config.GetString("seeding.demo")
	var seedHooks apt.LifecycleHooks
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled")
		seedHooks = apt.LifecycleHooks{
			OnStart: demo.DemoSeedingFunc(seedCtx, demo.Repos{
				Restaurants: restaurantRepo,
				Items:       menuItemRepo,
				Offers:      offerRepo,
			}, db, logger),
			OnStop: func(context.Context) error {
				cancelSeeds()
				return nil
			},
		}
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		apt.LifecycleHooks{OnStop: kv.Stop},
		orderSub,
		callSub,
		publisherLifecycle,
		subLifecycle,
	}
	if demoEnabled == "true" {
		lifecycles = append(lifecycles, seedHooks)
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port",
			guestHandler,
			staffHandler,
			menuHandler,
			orderHandler,
			callHandler,
			tenantHandler,
		),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
