package services

import (
	"errors"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services/dto"
)

type TradeService interface {
	Create(req dto.CreateTradeRequest) (*dto.TradeResponse, error)
	GetByID(id string) (*dto.TradeResponse, error)
	List(includeInactive bool) ([]dto.TradeResponse, error)
	Update(id string, req dto.UpdateTradeRequest) (*dto.TradeResponse, error)
	Deactivate(id string) error
}

type TradeServiceImpl struct {
	tradeRepo repositories.TradeRepository
}

func NewTradeService(tradeRepo repositories.TradeRepository) TradeService {
	return &TradeServiceImpl{tradeRepo: tradeRepo}
}

func (s *TradeServiceImpl) Create(req dto.CreateTradeRequest) (*dto.TradeResponse, error) {
	trade := &models.Trade{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if err := s.tradeRepo.Create(trade); err != nil {
		if errors.Is(err, repositories.ErrTradeAlreadyExists) {
			return nil, appErrors.ErrTradeExists
		}
		return nil, appErrors.InternalError(err)
	}
	return toTradeResponse(trade), nil
}

func (s *TradeServiceImpl) GetByID(id string) (*dto.TradeResponse, error) {
	trade, err := s.tradeRepo.FindByID(id)
	if err != nil {
		return nil, mapTradeError(err)
	}
	return toTradeResponse(trade), nil
}

func (s *TradeServiceImpl) List(includeInactive bool) ([]dto.TradeResponse, error) {
	trades, err := s.tradeRepo.FindAll(includeInactive)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.TradeResponse, 0, len(trades))
	for i := range trades {
		out = append(out, *toTradeResponse(&trades[i]))
	}
	return out, nil
}

func (s *TradeServiceImpl) Update(id string, req dto.UpdateTradeRequest) (*dto.TradeResponse, error) {
	trade, err := s.tradeRepo.FindByID(id)
	if err != nil {
		return nil, mapTradeError(err)
	}

	if req.Name != nil {
		trade.Name = *req.Name
	}
	if req.Description != nil {
		trade.Description = *req.Description
	}
	if req.Icon != nil {
		trade.Icon = *req.Icon
	}
	if req.IsActive != nil {
		trade.IsActive = *req.IsActive
	}

	if err := s.tradeRepo.Update(trade); err != nil {
		if errors.Is(err, repositories.ErrTradeAlreadyExists) {
			return nil, appErrors.ErrTradeExists
		}
		return nil, appErrors.InternalError(err)
	}
	return toTradeResponse(trade), nil
}

func (s *TradeServiceImpl) Deactivate(id string) error {
	if err := s.tradeRepo.Deactivate(id); err != nil {
		return mapTradeError(err)
	}
	return nil
}

func toTradeResponse(t *models.Trade) *dto.TradeResponse {
	return &dto.TradeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Icon:        t.Icon,
		IsActive:    t.IsActive,
	}
}

func mapTradeError(err error) *appErrors.AppError {
	if errors.Is(err, repositories.ErrTradeNotFound) {
		return appErrors.ErrTradeNotFound
	}
	return appErrors.InternalError(err)
}
