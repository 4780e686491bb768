package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"

	"github.com/playloggd/diary-services/internal/diarysvc/broker"
	"github.com/playloggd/diary-services/internal/diarysvc/curation"
	"github.com/playloggd/diary-services/internal/diarysvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	GameLogService   *service.GameLogService
	FavoritesService *service.FavoritesService
	ListService      *service.ListService
	CatalogService   *service.CatalogService
	UserService      *service.UserService
	Broker           *broker.Broker
}

func NewHandler(gameLogs *service.GameLogService, favorites *service.FavoritesService,
	lists *service.ListService, catalog *service.CatalogService,
	users *service.UserService, b *broker.Broker) *Handler {
	return &Handler{
		GameLogService:   gameLogs,
		FavoritesService: favorites,
		ListService:      lists,
		CatalogService:   catalog,
		UserService:      users,
		Broker:           b,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) ok(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: data})
}

func (h *Handler) created(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, Response{Message: "created", Code: http.StatusCreated, Data: data})
}

// fail maps the curation error taxonomy onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	var verr *curation.ValidationError
	var serr *curation.StoreError
	switch {
	case errors.Is(err, curation.ErrNotAuthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, curation.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, curation.ErrNotOwner):
		code = http.StatusForbidden
	case errors.Is(err, curation.ErrDuplicateItem):
		code = http.StatusConflict
	case errors.Is(err, curation.ErrFavoriteSlotsFull):
		code = http.StatusUnprocessableEntity
	case errors.As(err, &verr):
		code = http.StatusBadRequest
	case errors.As(err, &serr):
		code = http.StatusBadGateway
	}

	h.CreateResponse(w, Response{Message: "error", Code: code, Error: err.Error()})
}

// userID pulls the authenticated user out of the verified JWT claims.
// Zero means unauthenticated and every service call rejects it.
func (h *Handler) userID(r *http.Request) int64 {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0
	}
	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &curation.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return nil
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "diary service is running at port " + os.Getenv("DIARY_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}
