package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WorldBankfinancials/ledger-api/internal/domain"
)

type ticketRepo interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SupportTicket, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.SupportTicket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus, limit, offset int) ([]domain.SupportTicket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus) error
}

type TicketService struct {
	tickets ticketRepo
	audit   adminActionRepo
}

func NewTicketService(tickets ticketRepo, audit adminActionRepo) *TicketService {
	return &TicketService{tickets: tickets, audit: audit}
}

func (s *TicketService) CreateTicket(ctx context.Context, userID uuid.UUID, subject, message string, priority domain.TicketPriority) (*domain.SupportTicket, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return nil, fmt.Errorf("CreateTicket: %w", domain.ErrInvalidRequest)
	}
	if priority == "" {
		priority = domain.TicketPriorityNormal
	}

	now := time.Now().UTC()
	ticket := &domain.SupportTicket{
		ID:        uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Message:   message,
		Status:    domain.TicketStatusOpen,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("CreateTicket: %w", err)
	}
	return ticket, nil
}

func (s *TicketService) ListUserTickets(ctx context.Context, userID uuid.UUID) ([]domain.SupportTicket, error) {
	tickets, err := s.tickets.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListUserTickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) ListByStatus(ctx context.Context, status domain.TicketStatus, limit, offset int) ([]domain.SupportTicket, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("ListByStatus: %w", domain.ErrInvalidRequest)
	}
	tickets, err := s.tickets.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus: %w", err)
	}
	return tickets, nil
}

// UpdateTicketStatus is an admin operation and leaves an audit row.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, ticketID, adminID uuid.UUID, status domain.TicketStatus) (*domain.SupportTicket, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("UpdateTicketStatus: %w", domain.ErrInvalidRequest)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("UpdateTicketStatus: %w", err)
	}

	if err := s.tickets.UpdateStatus(ctx, ticketID, status); err != nil {
		return nil, fmt.Errorf("UpdateTicketStatus: %w", err)
	}

	note := fmt.Sprintf("status %s -> %s", ticket.Status, status)
	if err := s.audit.Create(ctx, nil, &domain.AdminAction{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     domain.AdminActionUpdateTicket,
		TargetType: "ticket",
		TargetID:   ticketID,
		Notes:      &note,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("UpdateTicketStatus: audit: %w", err)
	}

	ticket.Status = status
	return ticket, nil
}
