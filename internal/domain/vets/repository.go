package vets

import "context"

// Repository es el Record Store. Update y Delete sobre un id inexistente
// no son error: afectan cero filas y devuelven nil.
type Repository interface {
	List(ctx context.Context) ([]Vet, error)
	Create(ctx context.Context, v Vet) (int64, error)
	Update(ctx context.Context, v Vet) error
	Delete(ctx context.Context, id int64) error
	SeedIfEmpty(ctx context.Context, v Vet) (bool, error)
}
