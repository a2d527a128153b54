package directory

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/rowbind/pkg/httputil"
	"github.com/platinummonkey/rowbind/pkg/observability"
)

// RegisterRoutes mounts the directory endpoints on router.
func (s *Service) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/people", s.handleListPeople).Methods(http.MethodGet)
	router.HandleFunc("/v1/people/{id:[0-9]+}", s.handleGetPerson).Methods(http.MethodGet)
}

func (s *Service) handleListPeople(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.ParseLimitParam(r, DefaultPageSize, MaxPageSize)
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	people, err := s.ListPeople(r.Context(), limit)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("failed to list people")
		httputil.WriteInternalError(w, errors.New("failed to list people"))
		return
	}
	if people == nil {
		people = []Person{}
	}
	httputil.WriteSuccess(w, people)
}

func (s *Service) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParseInt64Var(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	person, err := s.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.WriteNotFoundError(w, "person not found")
			return
		}
		observability.FromContext(r.Context()).WithError(err).Error("failed to get person")
		httputil.WriteInternalError(w, errors.New("failed to get person"))
		return
	}
	httputil.WriteSuccess(w, person)
}
