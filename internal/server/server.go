package server

import (
	"fmt"
	"net/http"
	"time"

	"studiopanel/internal/config"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
)

type Server struct {
	port         uint
	httpLog      bool
	rootContext  *actor.RootContext
	sessionActor *actor.PID
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, sessionActor *actor.PID) *http.Server {
	NewServer := &Server{
		port:         cfg.Port,
		rootContext:  rootContext,
		sessionActor: sessionActor,
		httpLog:      cfg.HttpLog,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
