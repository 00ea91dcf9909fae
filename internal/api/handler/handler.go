package handler

import "cloudchat/backend/internal/chathub"

// Handler holds the HTTP-facing dependencies.
type Handler struct {
	Hub *chathub.ManagerService
}

func NewHandler(hub *chathub.ManagerService) *Handler {
	return &Handler{Hub: hub}
}
