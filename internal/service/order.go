package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/internal/util"
)

type OrderService struct {
	Repo *repo.Repo
}

type CreateOrderInput struct {
	OrderCode   string  `json:"order_code,omitempty"`
	TotalAmount float64 `json:"total_amount"`
}

type UpdateOrderInput struct {
	TotalAmount *float64            `json:"total_amount,omitempty"`
	Status      *models.OrderStatus `json:"status,omitempty"`
}

type OrderPage struct {
	Orders  []models.Order `json:"orders"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

func (s *OrderService) CreateOrder(ctx context.Context, userID uint, in CreateOrderInput) (*models.Order, error) {
	if _, err := s.Repo.UserByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	code := in.OrderCode
	if code == "" {
		code = newOrderCode()
	}

	order := &models.Order{
		OrderCode:   code,
		UserID:      userID,
		OrderDate:   time.Now().UTC(),
		TotalAmount: in.TotalAmount,
		Status:      models.OrderStatusPending,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.Repo.OrderByID(ctx, id)
}

func (s *OrderService) UpdateOrder(ctx context.Context, id uint, in UpdateOrderInput) (*models.Order, error) {
	order, err := s.Repo.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.TotalAmount != nil {
		order.TotalAmount = *in.TotalAmount
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("unknown order status %q", *in.Status)
		}
		order.Status = *in.Status
	}

	if err := s.Repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown order status %q", status)
	}

	order, err := s.Repo.OrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := s.Repo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.Repo.DeleteOrder(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, page, perPage int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, perPage)
	orders, total, err := s.Repo.ListOrders(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total, Page: util.PageOrFirst(page), PerPage: limit}, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint, page, perPage int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, perPage)
	orders, total, err := s.Repo.ListUserOrders(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total, Page: util.PageOrFirst(page), PerPage: limit}, nil
}

func newOrderCode() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
