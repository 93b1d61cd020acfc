package gateway

import (
	"context"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

type Stock struct {
	api *apiclient.Client
}

func (s *Stock) Reserve(ctx context.Context, req *models.ReservationRequest) (*models.ReservationResult, error) {
	var out models.ReservationResult
	if err := s.api.Post(ctx, "/reservation/reserve", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Stock) Cancel(ctx context.Context, req *models.ReservationRequest) error {
	return s.api.Post(ctx, "/reservation/cancel", req, nil)
}
