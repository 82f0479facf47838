package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

// BoletaStore persists boleta payments.
type BoletaStore interface {
	ListBoletaPayments(ctx context.Context) ([]models.BoletaPayment, error)
	CreateBoletaPayment(ctx context.Context, p models.BoletaPayment) (models.BoletaPayment, error)
	DeleteBoletaPayment(ctx context.Context, id string) error
}

// BoletaService records payments made for batches of boletas.
type BoletaService struct {
	store  BoletaStore
	events Publisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewBoletaService(store BoletaStore, events Publisher, log zerolog.Logger) *BoletaService {
	return &BoletaService{
		store:  store,
		events: events,
		log:    log.With().Str("component", "boletas").Logger(),
		now:    time.Now,
	}
}

func (s *BoletaService) List(ctx context.Context) ([]models.BoletaPayment, error) {
	return s.store.ListBoletaPayments(ctx)
}

// Create stores a payment. Fecha defaults to now.
func (s *BoletaService) Create(ctx context.Context, p models.BoletaPayment) (models.BoletaPayment, error) {
	if p.Monto.IsNegative() {
		return models.BoletaPayment{}, fmt.Errorf("%w: monto cannot be negative", ErrInvalidEdit)
	}
	if p.Boletas < 0 {
		return models.BoletaPayment{}, fmt.Errorf("%w: boletas cannot be negative", ErrInvalidEdit)
	}
	if p.Fecha.IsZero() {
		p.Fecha = s.now()
	}
	p.Monto = p.Monto.Round(2)

	created, err := s.store.CreateBoletaPayment(ctx, p)
	if err != nil {
		return models.BoletaPayment{}, err
	}
	s.events.Publish(EventBoletaCreated, created)
	return created, nil
}

func (s *BoletaService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteBoletaPayment(ctx, id)
}
