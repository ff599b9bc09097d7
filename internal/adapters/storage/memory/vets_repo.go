package memory

import (
	"context"
	"sort"
	"sync"

	"vet-directory/internal/domain/vets"
)

// vetRepo es el store de desarrollo (DB_DRIVER=memory) y el de los tests del router.
// Mismo contrato que el SQL: update/delete de ids inexistentes no fallan.
type vetRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]vets.Vet
}

func NewVetRepo() vets.Repository {
	return &vetRepo{
		byID: make(map[int64]vets.Vet),
	}
}

func (r *vetRepo) List(ctx context.Context) ([]vets.Vet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vets.Vet, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, v)
	}

	// Orden por id (solo para consistencia en dev; el contrato no promete orden)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *vetRepo) Create(ctx context.Context, v vets.Vet) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertLocked(v), nil
}

func (r *vetRepo) Update(ctx context.Context, v vets.Vet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[v.ID]
	if !ok {
		return nil
	}
	cur.FullName = v.FullName
	cur.Email = v.Email
	r.byID[v.ID] = cur
	return nil
}

func (r *vetRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byID, id)
	return nil
}

func (r *vetRepo) SeedIfEmpty(ctx context.Context, v vets.Vet) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.byID) > 0 {
		return false, nil
	}
	r.insertLocked(v)
	return true, nil
}

// ids nunca se reutilizan, igual que AUTO_INCREMENT.
func (r *vetRepo) insertLocked(v vets.Vet) int64 {
	r.nextID++
	v.ID = r.nextID
	r.byID[v.ID] = v
	return v.ID
}
