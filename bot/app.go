package bot

import (
	"context"
	"time"

	coreconfig "github.com/konflic/purchase-bot/core/config"
	"github.com/konflic/purchase-bot/core/logger"
	"github.com/konflic/purchase-bot/core/storage"
	coretelegram "github.com/konflic/purchase-bot/core/telegram"
	"github.com/konflic/purchase-bot/core/telegram/commands"
	"github.com/konflic/purchase-bot/core/telegram/router"
	"github.com/konflic/purchase-bot/core/telegram/state"
	"github.com/konflic/purchase-bot/core/telegram/ui"
	"github.com/konflic/purchase-bot/purchase"
	"log/slog"
)

// App wires the purchase list service into the Telegram runtime.
type App struct {
	cfg *coreconfig.Config
	svc *purchase.Service
	fsm state.Manager
}

// New builds the application around a ready store.
func New(cfg *coreconfig.Config, store storage.Store) *App {
	ttl := time.Duration(cfg.Conversation.TimeoutSeconds) * time.Second
	return &App{
		cfg: cfg,
		svc: purchase.NewService(store),
		fsm: state.NewMemoryManager(ttl),
	}
}

// CoreConfig exposes the embedded core configuration.
func (a *App) CoreConfig() *coreconfig.Config { return a.cfg }

func (a *App) buildRegistry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "начать работу",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "справка по командам",
	})
	reg.RegisterCommand("/show_lists", commands.Command{
		Handler:     a.handleShowLists,
		Description: "мои списки",
		Aliases:     []string{"lists"},
	})
	reg.RegisterCommand("/create_list", commands.Command{
		Handler:     a.handleCreateList,
		Description: "создать список",
	})
	reg.RegisterCommand("/select_list", commands.Command{
		Handler:     a.handleSelectList,
		Description: "выбрать список",
	})
	reg.RegisterCommand("/delete_list", commands.Command{
		Handler:     a.handleDeleteList,
		Description: "удалить список",
	})
	reg.RegisterCommand("/add", commands.Command{
		Handler:     a.handleAdd,
		Description: "добавить покупки",
	})
	reg.RegisterCommand("/remove", commands.Command{
		Handler:     a.handleRemove,
		Description: "удалить покупки",
	})
	reg.RegisterCommand("/list_items", commands.Command{
		Handler:     a.handleListItems,
		Description: "показать текущий список",
		Aliases:     []string{"show"},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "отменить текущее действие",
	})
	reg.RegisterCommand("/version", commands.Command{
		Handler:     a.handleVersion,
		Description: "информация о сборке",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(cbSelectList, a.cbSelect)
	_ = reg.RegisterCallback(cbRemoveItem, a.cbRemove)
	_ = reg.RegisterCallback(cbDeleteCompleted, a.cbDeleteCompleted)
	_ = reg.RegisterCallback(cbShowLists, a.cbLists)
	_ = reg.RegisterCallback(cbShowItems, a.cbItems)
	_ = reg.RegisterCallback(cbCancelDialog, a.cbCancel)

	reg.SetTextFallback(a.UnknownText())
	reg.SetCallbackNotFound(a.UnknownCallback())

	return reg
}

// TelegramRunOptions assembles routes, middlewares and lifecycle hooks
// for the shared Telegram runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	a.registerFlows()
	reg := a.buildRegistry()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.fsm, reg, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: a.UnknownCallback(),
	}))

	middlewares := coretelegram.DefaultMiddlewares(a.cfg, nil)
	middlewares = append(middlewares, coretelegram.Middleware{
		Name: "session",
		Use:  state.WithSession(a.fsm),
	})

	sweepDone := make(chan struct{})

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			go a.sweepLoop(ctx, sweepDone)
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			close(sweepDone)
			return nil
		},
	}, nil
}

// sweepLoop periodically resets conversations that timed out waiting for
// a reply, so abandoned dialogs never pin state in memory.
func (a *App) sweepLoop(ctx context.Context, done <-chan struct{}) {
	interval := time.Duration(a.cfg.Conversation.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if expired := a.fsm.ExpireStale(time.Now()); expired > 0 {
				logger.Info(ctx, "bot", "conversation.sweep",
					slog.String("outcome", "timed_out"),
					slog.Int("expired", expired),
				)
			}
		}
	}
}

var _ ui.FallbackProvider = (*App)(nil)
