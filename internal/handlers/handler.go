package handlers

import "stayfinder-api/internal/services"

type Handler struct {
	searchService *services.SearchService
}

func New(searchService *services.SearchService) *Handler {
	return &Handler{
		searchService: searchService,
	}
}
