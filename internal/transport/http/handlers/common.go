package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/transport/http/validate"
)

// pageFromQuery reads page and limit; junk values fall back to the defaults.
func pageFromQuery(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return domain.PageRequest{Page: page, Limit: limit}.Normalize()
}

// pathID returns the {id} URL param. Ids are uuids, so anything else cannot exist.
func pathID(r *http.Request, entity string) (string, error) {
	id := chi.URLParam(r, "id")
	if !validate.IsUUID(id) {
		return "", domain.ErrNotFound(entity + " not found")
	}
	return id, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, domain.ErrValidationMeta("invalid query param", map[string]string{"invalid": key})
	}
	return &b, nil
}
