package vets

import (
	"context"
	"time"
)

// DefaultVet es la fila que se siembra cuando la tabla está vacía (SEED_DEFAULT).
var DefaultVet = CreateInput{
	FullName: "Dr. Jane Doe",
	Email:    "jane.doe@clinic.com",
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// CreateInput no se valida: strings vacíos son válidos (NOT NULL, no "no vacío").
type CreateInput struct {
	FullName string
	Email    string
}

type UpdateInput struct {
	FullName string
	Email    string
}

func (s *Service) List(ctx context.Context) ([]Vet, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Vet{}
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Vet, error) {
	now := s.now().UTC()
	v := Vet{
		FullName:  in.FullName,
		Email:     in.Email,
		CreatedAt: &now,
	}

	id, err := s.repo.Create(ctx, v)
	if err != nil {
		return Vet{}, err
	}
	v.ID = id
	return v, nil
}

// Update reemplaza FullName y Email. Si el id no existe no pasa nada.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) error {
	return s.repo.Update(ctx, Vet{
		ID:       id,
		FullName: in.FullName,
		Email:    in.Email,
	})
}

// Delete borra por id. Si el id no existe no pasa nada.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SeedDefault inserta DefaultVet solo si la tabla está vacía.
func (s *Service) SeedDefault(ctx context.Context) (bool, error) {
	now := s.now().UTC()
	return s.repo.SeedIfEmpty(ctx, Vet{
		FullName:  DefaultVet.FullName,
		Email:     DefaultVet.Email,
		CreatedAt: &now,
	})
}
