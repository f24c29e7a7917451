package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"

	"github.com/jobstack/job-board/internal/config"
	"github.com/jobstack/job-board/internal/middleware"

	"github.com/allegro/bigcache/v3"
	"github.com/gorilla/mux"
)

const (
	CacheKeyJobStats     = "jobStats"
	CacheKeyJobAnalytics = "jobAnalytics"
)

type Server struct {
	cfg      config.Config
	Conn     *sql.DB
	router   *mux.Router
	bigCache *bigcache.BigCache
	emailRe  *regexp.Regexp
}

func NewServer(
	cfg config.Config,
	conn *sql.DB,
	r *mux.Router,
) Server {
	bigCache, err := bigcache.NewBigCache(bigcache.DefaultConfig(cfg.StatsCacheTTL))
	svr := Server{
		cfg:      cfg,
		Conn:     conn,
		router:   r,
		bigCache: bigCache,
		emailRe:  regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$"),
	}
	if err != nil {
		svr.Log(err, "unable to initialise big cache")
	}

	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) GetJWTSigningKey() []byte {
	return s.cfg.JwtSigningKey
}

func (s Server) IsEmail(email string) bool {
	return s.emailRe.MatchString(email)
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s Server) Log(err error, msg string) {
	log.Printf("%s: %+v", msg, err)
}

func (s Server) CacheGet(key string) ([]byte, bool) {
	out, err := s.bigCache.Get(key)
	if err != nil {
		return []byte{}, false
	}
	return out, true
}

func (s Server) CacheSet(key string, val []byte) error {
	return s.bigCache.Set(key, val)
}

func (s Server) CacheDelete(key string) error {
	return s.bigCache.Delete(key)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		log.Printf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	return http.ListenAndServe(
		addr,
		middleware.LoggingMiddleware(middleware.HeadersMiddleware(s.router, s.cfg.Env)),
	)
}
