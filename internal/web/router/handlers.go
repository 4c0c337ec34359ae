package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/pgdao/internal/orm/crud"
	"github.com/conduit-lang/pgdao/internal/orm/mapper"
	webquery "github.com/conduit-lang/pgdao/internal/web/query"
)

// maxBodyBytes limits create and update payloads
const maxBodyBytes = 1 << 20

type handlers struct {
	dao    *crud.DAO
	logger *zap.Logger
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	params, err := webquery.Parse(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	items, err := h.dao.All(r.Context(), crud.ListOptions{
		Filter: params.Filter,
		Sort:   params.Sort,
		Paging: params.Paging,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": items})
}

func (h *handlers) count(w http.ResponseWriter, r *http.Request) {
	filter, err := webquery.ParseFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	count, err := h.dao.Count(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"count": count})
}

func (h *handlers) show(w http.ResponseWriter, r *http.Request) {
	item, err := h.dao.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": item})
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	entity, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	saved, err := h.dao.Save(r.Context(), entity)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": saved})
}

func (h *handlers) update(w http.ResponseWriter, r *http.Request) {
	entity, err := decodeObject(w, r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	entity[h.dao.IDField()] = chi.URLParam(r, "id")

	updated, err := h.dao.Update(r.Context(), entity)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": updated})
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.dao.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeObject reads a JSON object body. Numbers stay json.Number so large
// ids survive the round trip.
func decodeObject(w http.ResponseWriter, r *http.Request) (mapper.Object, error) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.UseNumber()

	var entity mapper.Object
	if err := decoder.Decode(&entity); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if entity == nil {
		return nil, errBadBody
	}
	return entity, nil
}
