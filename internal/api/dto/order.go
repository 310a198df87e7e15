package dto

import "github.com/spad0604/robot-delivery/internal/domain"

// CreateOrderRequest carries either MapURL or both Lat and Lng.
type CreateOrderRequest struct {
	MapURL string   `json:"map_url"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

type CreateOrderResponse struct {
	ID string `json:"id"`
}

type ListOrdersResponse struct {
	Count  int             `json:"count"`
	Orders []*domain.Order `json:"orders"`
}

func NewListOrdersResponse(orders []*domain.Order) ListOrdersResponse {
	if orders == nil {
		orders = []*domain.Order{}
	}
	return ListOrdersResponse{Count: len(orders), Orders: orders}
}
