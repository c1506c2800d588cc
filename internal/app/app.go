package app

import (
	"context"
	"fmt"

	"github.com/Helarman/crm-frontend-sub004/internal/audio"
	"github.com/Helarman/crm-frontend-sub004/internal/board"
	"github.com/Helarman/crm-frontend-sub004/internal/events"
	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/internal/orderapi"
	"github.com/Helarman/crm-frontend-sub004/internal/prefs"
	"github.com/Helarman/crm-frontend-sub004/pkg/event"
	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"
)

const (
	AppName    = "boardd"
	AppVersion = "0.1.0"
)

// App encapsulates one operator board daemon (kitchen or delivery surface).
type App struct {
	config *apt.Config
	logger apt.Logger
	micro  *apt.Micro

	transport  *events.NATSTransport
	subscriber *events.OrderSubscriber
	highlights *board.HighlightRegistry
}

func New(config *apt.Config, logger apt.Logger) (*App, error) {
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize sets up all dependencies and components.
func (a *App) Initialize(ctx context.Context) error {
	surfaceName, _ := a.config.GetString("board.surface")
	surface := board.Surface(surfaceName)
	if !surface.Valid() {
		return fmt.Errorf("invalid board.surface %q (want kitchen or delivery)", surfaceName)
	}

	prefsPath, _ := a.config.GetString("board.prefs.path")
	if prefsPath == "" {
		prefsPath = fmt.Sprintf("%s-prefs.json", surface)
	}
	store, err := prefs.NewFileStore(prefsPath, a.logger)
	if err != nil {
		return err
	}

	apiURL, _ := a.config.GetString("orders.api.url")
	client := orderapi.NewHTTPClient(apiURL)

	broadcaster := board.NewBroadcaster(a.logger)
	notifier := board.NewStreamNotifier(broadcaster)

	a.highlights = board.NewHighlightRegistry(board.DefaultHighlightTTL)
	a.highlights.OnExpire(func(string) {
		broadcaster.Publish(board.StreamEvent{Name: "change"})
	})

	viewer := board.Viewer{}
	if surface == board.SurfaceDelivery {
		viewer.CourierID, _ = a.config.GetString("board.courier.id")
		restricted, _ := a.config.GetString("board.courier.restricted")
		viewer.Restricted = restricted == "true"
	}

	// The dispatcher reads the sound preference through the board, which is
	// constructed just below; the closure resolves at dispatch time.
	var b *board.Board
	dispatcher := board.NewDispatcher(
		audio.NewLogPlayer(a.logger),
		notifier,
		a.highlights,
		func() bool { return b.SoundEnabled() },
		a.logger,
	)

	b = board.NewBoard(
		surface,
		client,
		store,
		dispatcher,
		board.NewSnapshotStore(),
		a.highlights,
		notifier,
		a.logger,
		board.WithViewer(viewer),
		board.WithOnChange(func() {
			broadcaster.Publish(board.StreamEvent{Name: "change"})
		}),
	)

	natsURL, _ := a.config.GetString("nats.url")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	pushEnabled, _ := a.config.GetString("push.enabled")

	a.transport, err = events.NewNATSTransport(natsURL)
	if err != nil {
		return err
	}

	a.subscriber = events.NewOrderSubscriber(a.transport, events.Callbacks{
		OnOrderCreated:       func(o order.Order) { b.Apply(event.EventOrderCreated, o) },
		OnOrderUpdated:       func(o order.Order) { b.Apply(event.EventOrderUpdated, o) },
		OnOrderStatusUpdated: func(o order.Order) { b.Apply(event.EventOrderStatusUpdated, o) },
		OnOrderModified:      func(o order.Order) { b.Apply(event.EventOrderModified, o) },
	}, pushEnabled != "false", a.logger)

	selectRestaurant := func(ctx context.Context, restaurantID string) error {
		return switchRestaurant(ctx, b, a.subscriber, restaurantID, a.logger)
	}

	planner := board.NewArchivePlanner(client, a.logger)
	handler := board.NewHandler(b, planner, broadcaster, selectRestaurant, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

	resume := apt.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			if last, ok := b.LastRestaurant(); ok && last != "" {
				if err := selectRestaurant(ctx, last); err != nil {
					// Visible error state on the board; the operator reselects.
					a.logger.Errorf("failed to resume restaurant %s: %v", last, err)
				}
			}
			return nil
		},
		OnStop: func(context.Context) error {
			if err := a.subscriber.Stop(); err != nil {
				a.logger.Errorf("failed to stop order subscriber: %v", err)
			}
			a.highlights.Stop()
			return a.transport.Close()
		},
	}

	options := []apt.Option{
		apt.WithConfig(a.config),
		apt.WithLogger(a.logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(resume),
		apt.WithHealthChecks(AppName),
	}

	a.micro = apt.NewMicro(options...)
	return nil
}

// switchRestaurant moves the board to another restaurant. The previous push
// subscription is torn down before the fetch, not after: a failed fetch
// leaves the board in its visible error state, and a feed still pointed at
// the old restaurant would silently repopulate it.
func switchRestaurant(
	ctx context.Context,
	b *board.Board,
	subscriber *events.OrderSubscriber,
	restaurantID string,
	logger apt.Logger,
) error {
	if err := subscriber.Stop(); err != nil {
		logger.Errorf("failed to stop previous order feed: %v", err)
	}
	if err := b.SelectRestaurant(ctx, restaurantID); err != nil {
		return err
	}
	return subscriber.Start(restaurantID)
}

// Run starts the application.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
