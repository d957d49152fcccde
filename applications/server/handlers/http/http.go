package http

import (
	"net/http"
	"time"

	"github.com/go-kit/log"

	"github.com/donmikel/uploadguard/applications/server"
	"github.com/donmikel/uploadguard/applications/server/config"
)

const readHeaderTimeout = 10 * time.Second

func NewHTTPServer(conf config.Api, fileService server.FileService, metrics http.Handler, logger log.Logger) *http.Server {
	mux := NewRouter(conf, fileService, metrics, logger)
	return &http.Server{
		Addr:              conf.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       conf.ReadTimeout,
		WriteTimeout:      conf.WriteTimeout,
	}
}
