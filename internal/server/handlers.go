package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/repository"
	"github.com/gadgettrust/orderflow/internal/storage"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items       []lifecycle.Item `json:"items"`
		DeliveryFee int64            `json:"delivery_fee"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DeliveryFee < 0 {
		respondError(w, http.StatusBadRequest, "Delivery fee cannot be negative")
		return
	}

	order, err := s.storage.CreateOrder(r.Context(), storage.CreateOrderRequest{
		Items:       req.Items,
		DeliveryFee: req.DeliveryFee,
	})
	if err != nil {
		s.respondDomainError(w, err, "Failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := s.storage.GetOrder(r.Context(), orderID)
	if err != nil {
		s.respondDomainError(w, err, "Failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid value for 'limit' parameter")
			return
		}
	}

	orders, err := s.storage.ListOrders(r.Context(), limit)
	if err != nil {
		s.respondDomainError(w, err, "Failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetTracking(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := s.storage.GetOrder(r.Context(), orderID)
	if err != nil {
		s.respondDomainError(w, err, "Failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_id":    order.ID,
		"status":      order.Status,
		"active_step": order.ActiveStepIndex(),
		"steps":       order.TrackingSteps,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	history, err := s.storage.GetOrderHistory(r.Context(), orderID)
	if err != nil {
		s.respondDomainError(w, err, "Failed to get order history")
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "Missing status")
		return
	}

	order, err := s.storage.Transition(r.Context(), orderID, lifecycle.OrderStatus(req.Status))
	if err != nil {
		s.respondDomainError(w, err, "Failed to update order status")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleAttachReport(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var req struct {
		Report string `json:"report"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Report == "" {
		respondError(w, http.StatusBadRequest, "Missing report text")
		return
	}

	order, err := s.storage.AttachVerificationReport(r.Context(), orderID, req.Report)
	if err != nil {
		s.respondDomainError(w, err, "Failed to attach verification report")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (s *Server) respondDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrObjectNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, lifecycle.ErrEmptyItems),
		errors.Is(err, lifecycle.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrReportNotAllowed),
		errors.Is(err, lifecycle.ErrReportAlreadySet):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
