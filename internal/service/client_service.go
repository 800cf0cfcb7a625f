package service

import (
	"context"
	"fmt"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/mapper"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/opsdesk/admin-api/internal/repository"
	"go.uber.org/zap"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	policy     *policy.Engine
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, engine *policy.Engine, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		policy:     engine,
		logger:     logger,
	}
}

func (s *ClientService) List(ctx context.Context, page, pageSize int, filters *repository.ClientFilters) (*domain.PaginatedResponse, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewClients); err != nil {
		return nil, err
	}
	page, pageSize = clampPage(page, pageSize)

	clients, total, err := s.clientRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *ClientService) GetByID(ctx context.Context, id uint) (*domain.ClientDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermViewClients); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("client", err)
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	user, err := requireCreate(ctx, s.policy, domain.ResourceClients)
	if err != nil {
		return nil, err
	}

	client := &domain.Client{CreatedBy: user.UserID}
	applyClientRequest(client, req)
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created", zap.Uint("client_id", client.ID), zap.Uint("user_id", user.UserID))

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	if _, err := requirePermission(ctx, s.policy, domain.PermEditClients); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("client", err)
	}

	applyClientRequest(client, req)
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) Delete(ctx context.Context, id uint) error {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteClients)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.Uint("client_id", id), zap.Uint("user_id", user.UserID))
	return nil
}

// BulkDelete deletes each client independently and reports per-record outcomes
func (s *ClientService) BulkDelete(ctx context.Context, ids []uint) (*domain.BatchResult, error) {
	user, err := requirePermission(ctx, s.policy, domain.PermDeleteClients)
	if err != nil {
		return nil, err
	}
	result := deleteEach(ctx, "client", ids, s.remove, s.logger)
	s.logger.Info("client bulk delete",
		zap.Int("processed", len(result.Processed)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Uint("user_id", user.UserID))
	return result, nil
}

func (s *ClientService) remove(ctx context.Context, id uint) error {
	if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
		return lookupError("client", err)
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func applyClientRequest(client *domain.Client, req *domain.CreateClientRequest) {
	client.Name = req.Name
	client.CompanyName = req.CompanyName
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.City = req.City
	client.State = req.State
	client.PostalCode = req.PostalCode
	client.Country = req.Country
	client.Website = req.Website
	client.Industry = req.Industry
	client.Status = req.Status
	if client.Status == "" {
		client.Status = domain.ClientStatusActive
	}
	client.Notes = req.Notes
}
