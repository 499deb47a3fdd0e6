package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/listing-studio/engine/internal/api/types"
	"github.com/listing-studio/engine/internal/services"
)

type UsersHandler struct {
	users services.UserService
}

func NewUsersHandler(users services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.users.Balance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, types.BalanceResponse{Balance: b})
}
