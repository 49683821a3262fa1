package api

import (
	"github.com/Yoni-hub/connectura-platform-sub000/internal/config"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/database"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/share"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/websocket"
)

type Server struct {
	config *config.Config
	store  *database.Store
	shares *share.Service
	wsHub  *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.Store, shares *share.Service, wsHub *websocket.Hub) *Server {
	return &Server{
		config: cfg,
		store:  store,
		shares: shares,
		wsHub:  wsHub,
	}
}
