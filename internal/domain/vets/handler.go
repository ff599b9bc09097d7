package vets

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vet-directory/internal/middleware"
	"vet-directory/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes limita el body de POST/PUT.
const maxBodyBytes = 1 << 20 // 1MB

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/api/vets", func(vr chi.Router) {
		vr.Get("/", listVetsHandler(svc, log))
		vr.Post("/", createVetHandler(svc, log))
		vr.Put("/{vetID}", updateVetHandler(svc, log))
		vr.Delete("/{vetID}", deleteVetHandler(svc, log))
	})
}

// vetRequest: el id del body se ignora; en PUT manda el del path.
type vetRequest struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type vetResponse struct {
	ID        int64      `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// listVetsHandler godoc
// @Summary      List vets
// @Tags         vets
// @Produce      json
// @Success      200  {array}  vetResponse
// @Failure      500  {string} string "internal error"
// @Router       /api/vets [get]
func listVetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			internalError(w, r, log, "list vets failed", err)
			return
		}

		out := make([]vetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVetResponse(v))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// createVetHandler godoc
// @Summary      Create a vet
// @Tags         vets
// @Accept       json
// @Produce      json
// @Param        vet  body      vetRequest  true  "Vet (id is ignored)"
// @Success      200  {object}  vetResponse
// @Failure      400  {string}  string "invalid json"
// @Failure      500  {string}  string "internal error"
// @Router       /api/vets [post]
func createVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req vetRequest
		if err := decodeBody(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, err := svc.Create(r.Context(), CreateInput{
			FullName: req.FullName,
			Email:    req.Email,
		})
		if err != nil {
			internalError(w, r, log, "create vet failed", err)
			return
		}

		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

// updateVetHandler godoc
// @Summary      Replace a vet's name and email
// @Description  Updating an id that does not exist is a no-op and still returns 200.
// @Tags         vets
// @Accept       json
// @Param        id   path      int         true  "Vet id (overrides the body id)"
// @Param        vet  body      vetRequest  true  "Vet"
// @Success      200
// @Failure      400  {string}  string "invalid id / invalid json"
// @Failure      500  {string}  string "internal error"
// @Router       /api/vets/{id} [put]
func updateVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := vetIDParam(r)
		if !ok {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var req vetRequest
		if err := decodeBody(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.Update(r.Context(), id, UpdateInput{
			FullName: req.FullName,
			Email:    req.Email,
		}); err != nil {
			internalError(w, r, log, "update vet failed", err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// deleteVetHandler godoc
// @Summary      Delete a vet
// @Description  Deleting an id that does not exist is a no-op and still returns 200.
// @Tags         vets
// @Param        id   path      int  true  "Vet id"
// @Success      200
// @Failure      400  {string}  string "invalid id"
// @Failure      500  {string}  string "internal error"
// @Router       /api/vets/{id} [delete]
func deleteVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := vetIDParam(r)
		if !ok {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			internalError(w, r, log, "delete vet failed", err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// vetIDParam: la columna Id es INT de 32 bits; fuera de rango es 400.
func vetIDParam(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "vetID"))
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return id, true
}

// internalError loguea el detalle y al cliente solo le llega el status.
func internalError(w http.ResponseWriter, r *http.Request, log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]any{
		"request_id": middleware.GetRequestID(r.Context()),
		"err":        err,
	})
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toVetResponse(v Vet) vetResponse {
	return vetResponse{
		ID:        v.ID,
		FullName:  v.FullName,
		Email:     v.Email,
		CreatedAt: v.CreatedAt,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
