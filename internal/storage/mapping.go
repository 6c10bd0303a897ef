package storage

import (
	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/repository"
)

func orderToRow(order *lifecycle.Order) *repository.Order {
	row := &repository.Order{
		ID:          order.ID,
		Status:      string(order.Status),
		Pipeline:    order.PipelineID,
		DeliveryFee: order.DeliveryFee,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if order.VerificationReport != "" {
		report := order.VerificationReport
		row.VerificationReport = &report
	}
	return row
}

func itemToRow(orderID string, position int, item lifecycle.Item) *repository.OrderItem {
	return &repository.OrderItem{
		OrderID:      orderID,
		ProductID:    item.Product.ID,
		ProductName:  item.Product.Name,
		ProductImage: item.Product.Image,
		ListPrice:    item.Product.Price,
		AgreedPrice:  item.Price,
		IsSwap:       item.IsSwap,
		Position:     position,
	}
}

func stepToRow(orderID string, position int, step lifecycle.TrackingStep) *repository.TrackingStep {
	row := &repository.TrackingStep{
		OrderID:     orderID,
		Status:      string(step.Status),
		Label:       step.Label,
		Position:    position,
		Completed:   step.Completed,
		CompletedAt: step.Timestamp,
	}
	if step.Location != "" {
		location := step.Location
		row.Location = &location
	}
	return row
}

func orderFromRows(row *repository.Order, itemRows []*repository.OrderItem, stepRows []*repository.TrackingStep) *lifecycle.Order {
	items := make([]lifecycle.Item, 0, len(itemRows))
	for _, ir := range itemRows {
		items = append(items, lifecycle.Item{
			Product: lifecycle.Product{
				ID:    ir.ProductID,
				Name:  ir.ProductName,
				Price: ir.ListPrice,
				Image: ir.ProductImage,
			},
			Price:  ir.AgreedPrice,
			IsSwap: ir.IsSwap,
		})
	}

	steps := make([]lifecycle.TrackingStep, 0, len(stepRows))
	for _, sr := range stepRows {
		step := lifecycle.TrackingStep{
			Status:    lifecycle.OrderStatus(sr.Status),
			Label:     sr.Label,
			Completed: sr.Completed,
			Timestamp: sr.CompletedAt,
		}
		if sr.Location != nil {
			step.Location = *sr.Location
		}
		steps = append(steps, step)
	}

	order := &lifecycle.Order{
		ID:            row.ID,
		Items:         items,
		DeliveryFee:   row.DeliveryFee,
		TotalAmount:   row.TotalAmount,
		Status:        lifecycle.OrderStatus(row.Status),
		PipelineID:    row.Pipeline,
		TrackingSteps: steps,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.VerificationReport != nil {
		order.VerificationReport = *row.VerificationReport
	}
	return order
}
