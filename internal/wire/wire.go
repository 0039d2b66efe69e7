package wire

import (
	"net/http"

	"tour-payouts/internal/adaptor"
	"tour-payouts/internal/data/entity"
	"tour-payouts/internal/data/repository"
	"tour-payouts/internal/usecase"
	"tour-payouts/pkg/middleware"
	"tour-payouts/pkg/settlement"
	"tour-payouts/pkg/settlement/ach"
	"tour-payouts/pkg/settlement/bankwire"
	"tour-payouts/pkg/settlement/wallet"
	"tour-payouts/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// App holds the wired dependency graph.
type App struct {
	Router *chi.Mux
}

// Wiring builds adapters, services, and handlers with explicit constructor
// injection and returns the configured router.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	router := settlementRouter(config, logger)

	service := usecase.NewService(repo, router, config, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, config, logger),
	}
}

// settlementRouter registers one adapter per supported rail.
func settlementRouter(config *utils.Config, logger *zap.Logger) *settlement.Router {
	router := settlement.NewRouter()

	router.Register(entity.MethodKindACH, ach.NewAdapter(ach.Config{
		BaseURL: config.Provider.ACHBaseURL,
		APIKey:  config.Provider.ACHAPIKey,
		Timeout: config.Provider.Timeout,
	}, logger))

	router.Register(entity.MethodKindWallet, wallet.NewAdapter(wallet.Config{
		RPCURL:       config.Provider.WalletRPCURL,
		HotWalletKey: config.Provider.WalletHotKey,
		Timeout:      config.Provider.Timeout,
	}, logger))

	router.Register(entity.MethodKindWire, bankwire.NewAdapter(logger))

	return router
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		MaxAge:         300,
	}))

	wirePayout(r, handler.Payout, config, logger)
	wirePaymentMethod(r, handler.PaymentMethod, config, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
