//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/storage"
)

type Storage interface {
	CreateOrder(ctx context.Context, req storage.CreateOrderRequest) (*lifecycle.Order, error)
	GetOrder(ctx context.Context, orderID string) (*lifecycle.Order, error)
	ListOrders(ctx context.Context, limit int) ([]*lifecycle.Order, error)
	Transition(ctx context.Context, orderID string, target lifecycle.OrderStatus) (*lifecycle.Order, error)
	AttachVerificationReport(ctx context.Context, orderID, report string) (*lifecycle.Order, error)
	GetOrderHistory(ctx context.Context, orderID string) ([]lifecycle.StatusChange, error)
}

type UserRepo interface {
	ValidateUser(ctx context.Context, username, password string) (bool, error)
}

type Server struct {
	storage  Storage
	userRepo UserRepo
	logger   *zap.Logger
	server   *http.Server
}

func New(storage Storage, userRepo UserRepo, logger *zap.Logger) *Server {
	return &Server{
		storage:  storage,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.Info("http server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestLogMiddleware)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(s.basicAuthMiddleware)

	api.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/tracking", s.handleGetTracking).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/history", s.handleGetHistory).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/status", s.handleUpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}/verification-report", s.handleAttachReport).Methods(http.MethodPost)

	return router
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
