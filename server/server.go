// Package server exposes cache sessions over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/session"
)

// Server turns a session manager into a web server. The routes without a
// session ID operate on a default session that the server opens when it is
// created.
type Server struct {
	manager         *session.Manager
	defaultSession  *session.Session
	portNumber      int
	profileDuration time.Duration
	httpServer      *http.Server
}

// NewServer creates a new Server.
func NewServer(manager *session.Manager) *Server {
	return &Server{
		manager:         manager,
		defaultSession:  manager.Open(),
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the server.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the cache simulator server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// DefaultSession returns the session used by the routes without a session ID.
func (s *Server) DefaultSession() *session.Session {
	return s.defaultSession
}

// Handler returns the router that serves the API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/create_cache", s.createCache).Methods(http.MethodPost)
	r.HandleFunc("/api/access", s.access).Methods(http.MethodPost)
	r.HandleFunc("/api/get_state", s.getState).Methods(http.MethodGet)
	r.HandleFunc("/api/reset", s.reset).Methods(http.MethodPost)

	r.HandleFunc("/api/sessions", s.listSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", s.createSession).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/access", s.access).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/state", s.getState).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/reset", s.reset).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/inspect", s.inspect).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}", s.closeSession).Methods(http.MethodDelete)

	r.HandleFunc("/api/resource", s.listResources)
	r.HandleFunc("/api/profile", s.collectProfile)

	return r
}

// StartServer starts listening in the background and returns the URL of the
// server.
func (s *Server) StartServer() string {
	actualPort := ":0"
	if s.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Serving cache simulator with %s\n", url)

	s.httpServer = &http.Server{Handler: s.Handler()}
	httpServer := s.httpServer

	go func() {
		err := httpServer.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url
}

// Shutdown stops accepting requests and waits for the requests in flight to
// finish. It does nothing if the server was never started.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

type badRequest struct {
	err error
}

func (e badRequest) Error() string {
	return e.err.Error()
}

func (e badRequest) Unwrap() error {
	return e.err
}

func statusOf(err error) int {
	var (
		configErr *cache.ConfigurationError
		badReq    badRequest
	)

	switch {
	case errors.Is(err, session.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotInitialized),
		errors.As(err, &configErr),
		errors.As(err, &badReq):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorRsp{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return badRequest{fmt.Errorf("malformed request body: %w", err)}
	}

	return nil
}

func (s *Server) findSession(r *http.Request) (*session.Session, error) {
	id, ok := mux.Vars(r)["id"]
	if !ok {
		return s.defaultSession, nil
	}

	return s.manager.Get(id)
}

func (s *Server) createCache(w http.ResponseWriter, r *http.Request) {
	config, err := readConfig(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := s.defaultSession.Create(config)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateRsp{
		Success:    true,
		CacheState: makeCacheState(snapshot),
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	config, err := readConfig(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sess, snapshot, err := s.manager.Create(config)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, stateRsp{
		Success:    true,
		SessionID:  sess.ID(),
		CacheState: makeCacheState(snapshot),
	})
}

func readConfig(r *http.Request) (cache.Config, error) {
	req := createReq{}

	err := decodeBody(r, &req)
	if err != nil {
		return cache.Config{}, err
	}

	return req.config()
}

func (s *Server) access(w http.ResponseWriter, r *http.Request) {
	sess, err := s.findSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req := accessReq{}

	err = decodeBody(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	op, err := req.operation()
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := sess.Access(req.Address, op, req.Data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, makeAccess(result))
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	s.respondState(w, r, (*session.Session).State)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.respondState(w, r, (*session.Session).Reset)
}

func (s *Server) respondState(
	w http.ResponseWriter,
	r *http.Request,
	op func(*session.Session) (cache.Snapshot, error),
) {
	sess, err := s.findSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := op(sess)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateRsp{
		Success:    true,
		CacheState: makeCacheState(snapshot),
	})
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sessionsRsp{
		Success:  true,
		Sessions: s.manager.IDs(),
	})
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if id == s.defaultSession.ID() {
		writeError(w, badRequest{errors.New("the default session cannot be closed")})
		return
	}

	err := s.manager.Close(id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, successRsp{Success: true})
}

func (s *Server) inspect(w http.ResponseWriter, r *http.Request) {
	sess, err := s.findSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	buf := bytes.NewBuffer(nil)

	err = sess.Inspect(func(c *cache.Cache) error {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(c)
		serializer.SetMaxDepth(1)

		return serializer.Serialize(buf)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (s *Server) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (s *Server) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, err)
		return
	}

	time.Sleep(s.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, http.StatusOK, prof)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
