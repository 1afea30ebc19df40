package demo

import (
	"context"
	"errors"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/menyraclub/menyra/internal/menu"
	"github.com/menyraclub/menyra/internal/tenant"
)

const demoSeedApplication = "menyra_demo"

// Repos collects everything demo seeding writes to.
type Repos struct {
	Restaurants tenant.RestaurantRepo
	Items       menu.MenuItemRepo
	Offers      menu.OfferRepo
}

// ApplyDemoSeeds provisions the demo restaurant the guest defaults point at,
// with a small menu and one promotional slide.
func ApplyDemoSeeds(ctx context.Context, repos Repos, db *mongo.Database, logger apt.Logger) error {
	if db == nil {
		return errors.New("database is required for demo seeding")
	}

	tracker := seed.NewMongoTracker(db)

	seeds := []seed.Seed{
		{
			ID:          "2026-08-01_demo_restaurant",
			Description: "Create the demo restaurant behind the marketing links",
			Run: func(ctx context.Context) error {
				return seedDemoRestaurant(ctx, repos)
			},
		},
		{
			ID:          "2026-08-01_demo_menu",
			Description: "Seed the demo restaurant's menu and offers",
			Run: func(ctx context.Context) error {
				return seedDemoMenu(ctx, repos)
			},
		},
	}

	logger.Info("Applying demo seeds")
	if err := seed.Apply(ctx, tracker, seeds, demoSeedApplication); err != nil {
		return err
	}
	logger.Info("Demo seeds applied successfully")
	return nil
}

func seedDemoRestaurant(ctx context.Context, repos Repos) error {
	existing, err := repos.Restaurants.Get(ctx, "test-restaurant")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	rest := &tenant.Restaurant{
		ID:            "test-restaurant",
		Name:          "Demo Lokal",
		OwnerName:     "Demo Owner",
		City:          "Prishtina",
		Active:        true,
		OwnerCode:     "DEMO-OWNER",
		WaiterCode:    "DEMO-WAITER",
		OffersEnabled: true,
		TableCount:    tenant.DefaultTableCount,
	}
	rest.RenewSubscription(tenant.TodayISO())
	rest.BeforeCreate()

	return repos.Restaurants.Create(ctx, rest)
}

func seedDemoMenu(ctx context.Context, repos Repos) error {
	existing, err := repos.Items.ListByRestaurant(ctx, "test-restaurant")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	items := []struct {
		name        string
		description string
		price       float64
		category    string
	}{
		{"Pizza Margherita", "Tomato, mozzarella, basil", 8.9, "Pizza"},
		{"Pizza Funghi", "Tomato, mozzarella, mushrooms", 9.5, "Pizza"},
		{"Spaghetti Bolognese", "Slow-cooked beef ragu", 10.5, "Pasta"},
		{"Caesar Salad", "Romaine, parmesan, croutons", 7.5, "Sallata"},
		{"Espresso", "", 1.5, "Kafe & Espresso"},
		{"Macchiato", "", 1.8, "Kafe & Espresso"},
		{"Cola", "0.33l", 2.5, "Pije freskuese"},
		{"Uje", "0.5l", 1.0, "Uje"},
	}

	var firstPizza *menu.MenuItem
	for _, it := range items {
		item := menu.NewMenuItem("test-restaurant")
		item.Name = it.name
		item.Description = it.description
		item.Price = it.price
		item.Category = it.category
		item.Normalize()
		item.BeforeCreate()
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		if firstPizza == nil && it.category == "Pizza" {
			firstPizza = item
		}
	}

	offer := menu.NewOffer("test-restaurant")
	offer.Title = "Pizza e Dites"
	offer.Text = "Margherita at a special price, today only"
	price := 6.9
	offer.Price = &price
	offer.AddToCart = true
	if firstPizza != nil {
		offer.MenuItemID = &firstPizza.ID
	}
	offer.BeforeCreate()

	return repos.Offers.Create(ctx, offer)
}

// DemoSeedingFunc returns a lifecycle OnStart-compatible function that runs
// demo seeding in the background.
func DemoSeedingFunc(seedCtx context.Context, repos Repos, db *mongo.Database, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting demo seeding in background")
		go func() {
			if err := ApplyDemoSeeds(seedCtx, repos, db, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Demo seeds failed: %v", err)
			} else if err == nil {
				logger.Info("Demo seeding completed successfully")
			}
		}()
		return nil
	}
}
