package vets

import "time"

// Vet es la única entidad del directorio.
type Vet struct {
	ID       int64
	FullName string
	Email    string

	// CreatedAt es nil en filas anteriores a la columna CreatedAt.
	CreatedAt *time.Time
}
