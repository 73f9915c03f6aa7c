package main

import (
	"context"
	"log"
	"net/http"

	"furnimart-be/internal/cart"
	"furnimart-be/internal/catalog"
	"furnimart-be/internal/config"
	"furnimart-be/internal/db"
	"furnimart-be/internal/filestore"
	"furnimart-be/internal/finance"
	"furnimart-be/internal/inventory"
	"furnimart-be/internal/logger"
	"furnimart-be/internal/mail"
	"furnimart-be/internal/middleware"
	"furnimart-be/internal/order"
	"furnimart-be/internal/payment"
	"furnimart-be/internal/payment/webhook"
	"furnimart-be/internal/review"
	"furnimart-be/internal/transport"
	"furnimart-be/internal/user"
	"furnimart-be/internal/utils"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	files, err := filestore.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	catalogRepo := catalog.NewRepository(database)
	catalogSvc := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogSvc)

	inventoryRepo := inventory.NewRepository(database)
	inventorySvc := inventory.NewService(inventoryRepo, catalogRepo)
	inventoryHandler := inventory.NewHandler(inventorySvc)

	mailer := mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailSender,
		func(ctx context.Context, userID uint) (string, string, error) {
			u, err := userRepo.FindByID(ctx, userID)
			if err != nil {
				return "", "", err
			}
			return u.Name, u.Email, nil
		})

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, inventorySvc, mailer)
	orderHandler := order.NewHandler(orderSvc)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, catalogRepo)
	cartHandler := cart.NewHandler(cartSvc)

	momoGw := payment.NewMomoGateway(cfg.Momo)
	zaloPayGw := payment.NewZaloPayGateway(cfg.ZaloPay)

	paymentRepo := payment.NewRepository(database)
	paymentSvc := payment.NewService(momoGw, zaloPayGw, orderSvc)
	paymentHandler := payment.NewHandler(paymentSvc)

	reconciler := payment.NewReconciler(paymentRepo, orderSvc, inventorySvc, cartSvc)
	momoWebhook := webhook.NewMomoHandler(momoGw, reconciler)
	zaloPayWebhook := webhook.NewZaloPayHandler(zaloPayGw, reconciler)

	reviewRepo := review.NewRepository(database)
	reviewSvc := review.NewService(reviewRepo)
	reviewHandler := review.NewHandler(reviewSvc, files)

	financeRepo := finance.NewRepository(database)
	financeHandler := finance.NewHandler(financeRepo)

	staff := middleware.RequireRole(utils.RoleStaff)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users/register", userHandler.Register)
	mux.HandleFunc("POST /api/users/login", userHandler.Login)
	mux.Handle("GET /api/users/me", middleware.RequireAuth(http.HandlerFunc(userHandler.Me)))

	mux.HandleFunc("GET /api/furniture", catalogHandler.List)
	mux.HandleFunc("GET /api/furniture/{id}", catalogHandler.Get)
	mux.Handle("PUT /api/furniture/{id}", staff(http.HandlerFunc(catalogHandler.Update)))
	mux.Handle("POST /api/furniture/{id}/hide", staff(http.HandlerFunc(catalogHandler.Hide)))
	mux.Handle("POST /api/furniture/{id}/unhide", staff(http.HandlerFunc(catalogHandler.Unhide)))

	mux.Handle("POST /api/inventory/import", staff(http.HandlerFunc(inventoryHandler.Import)))
	mux.Handle("GET /api/inventory", staff(http.HandlerFunc(inventoryHandler.Overview)))
	mux.Handle("GET /api/inventory/product/{productId}", middleware.RequireAuth(http.HandlerFunc(inventoryHandler.ProductBatches)))
	mux.Handle("GET /api/inventory/total/{productId}", middleware.RequireAuth(http.HandlerFunc(inventoryHandler.TotalStock)))
	mux.Handle("GET /api/import-history", staff(http.HandlerFunc(inventoryHandler.History)))

	mux.Handle("POST /api/orders", middleware.RequireAuth(http.HandlerFunc(orderHandler.Create)))
	mux.Handle("GET /api/orders", middleware.RequireAuth(http.HandlerFunc(orderHandler.ListMine)))
	mux.Handle("GET /api/orders/all", staff(http.HandlerFunc(orderHandler.ListAll)))
	mux.Handle("GET /api/orders/count", staff(http.HandlerFunc(orderHandler.Count)))
	mux.Handle("GET /api/orders/{id}", middleware.RequireAuth(http.HandlerFunc(orderHandler.Detail)))
	mux.Handle("PATCH /api/orders/{id}/status", middleware.RequireAuth(http.HandlerFunc(orderHandler.UpdateStatus)))

	mux.Handle("GET /api/cart", middleware.RequireAuth(http.HandlerFunc(cartHandler.List)))
	mux.Handle("POST /api/cart", middleware.RequireAuth(http.HandlerFunc(cartHandler.Add)))
	mux.Handle("PUT /api/cart/{productId}", middleware.RequireAuth(http.HandlerFunc(cartHandler.Update)))
	mux.Handle("DELETE /api/cart/{productId}", middleware.RequireAuth(http.HandlerFunc(cartHandler.Remove)))
	mux.Handle("DELETE /api/cart", middleware.RequireAuth(http.HandlerFunc(cartHandler.Clear)))

	mux.Handle("POST /api/momo/create", middleware.RequireAuth(http.HandlerFunc(paymentHandler.CreateMomo)))
	mux.Handle("POST /api/zalopay/create", middleware.RequireAuth(http.HandlerFunc(paymentHandler.CreateZaloPay)))
	mux.Handle("POST /api/momo/status", middleware.RequireAuth(http.HandlerFunc(paymentHandler.MomoStatus)))
	mux.Handle("POST /api/zalopay/status", middleware.RequireAuth(http.HandlerFunc(paymentHandler.ZaloPayStatus)))

	// Provider callbacks authenticate by signature, not by session.
	mux.HandleFunc("POST /api/momo/callback", momoWebhook.Callback)
	mux.HandleFunc("POST /api/zalopay/callback", zaloPayWebhook.Callback)

	mux.Handle("POST /api/reviews", middleware.RequireAuth(http.HandlerFunc(reviewHandler.Create)))
	mux.HandleFunc("GET /api/reviews/product/{id}", reviewHandler.ListByProduct)
	mux.Handle("GET /api/reviews/reviewed", middleware.RequireAuth(http.HandlerFunc(reviewHandler.ReviewedProducts)))
	mux.Handle("GET /api/reviews/pending", staff(http.HandlerFunc(reviewHandler.ListPending)))
	mux.Handle("DELETE /api/reviews/{id}", staff(http.HandlerFunc(reviewHandler.Delete)))
	mux.HandleFunc("GET /api/reviews/testimonials", reviewHandler.ListTestimonials)
	mux.Handle("POST /api/reviews/testimonials", staff(http.HandlerFunc(reviewHandler.Promote)))
	mux.Handle("POST /api/reviews/testimonials/revert", staff(http.HandlerFunc(reviewHandler.Revert)))

	mux.Handle("GET /api/banned-words", staff(http.HandlerFunc(reviewHandler.ListBannedWords)))
	mux.Handle("POST /api/banned-words", staff(http.HandlerFunc(reviewHandler.AddBannedWord)))
	mux.Handle("DELETE /api/banned-words/{id}", staff(http.HandlerFunc(reviewHandler.DeleteBannedWord)))

	mux.Handle("GET /api/finance/revenue-profit", staff(http.HandlerFunc(financeHandler.Summary)))
	mux.Handle("GET /api/finance/revenue-profit-by-date", staff(http.HandlerFunc(financeHandler.Range)))

	// Callbacks ack success even when fulfillment partly fails; this is
	// where those swallowed failures become visible.
	mux.Handle("GET /api/metrics/reconciler", staff(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			transport.WriteJSON(w, http.StatusOK, reconciler.Stats())
		})))

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(files.Dir()))))

	handler := logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.AuthMiddleware(
				middleware.RateLimitMiddleware(mux))))

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, handler); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
