package devnet

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zkl/internal/apperr"
	"zkl/internal/bridge"
	"zkl/internal/content"
	"zkl/internal/domain"
	"zkl/internal/ledger"
	"zkl/internal/metrics"
)

// maxUpload bounds content store uploads.
const maxUpload = 64 << 20

// nodeVersion is reported on the IPFS version endpoint.
const nodeVersion = "0.30.0"

// ServerOptions configure a Server.
type ServerOptions struct {
	// RateLimit is requests per second per client address; zero disables
	// limiting.
	RateLimit float64
	Burst     int
	Metrics   *metrics.Metrics
	// Content replaces the network's in-memory store behind the IPFS API.
	Content domain.ContentStore
}

// Server serves a Network over HTTP.
type Server struct {
	net     *Network
	content domain.ContentStore
	limiter *ipLimiter
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewServer(n *Network, opts ServerOptions, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	store := opts.Content
	if store == nil {
		store = n.Content
	}
	return &Server{
		net:     n,
		content: store,
		limiter: newIPLimiter(opts.RateLimit, opts.Burst),
		metrics: opts.Metrics,
		log:     log,
	}
}

// Handler returns the routed, rate limited and logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+ledger.PathAccounts+"{addr}", s.getAccount)
	mux.HandleFunc("POST "+ledger.PathTransactions, s.postTransaction)
	mux.HandleFunc("GET /v1/signed_vaa/{chain}/{emitter}/{seq}", s.getSignedVAA)
	mux.HandleFunc("POST "+content.PathAdd, s.contentAdd)
	mux.HandleFunc("POST "+content.PathPin, s.contentPin)
	mux.HandleFunc("POST "+content.PathCat, s.contentCat)
	mux.HandleFunc("POST "+content.PathVersion, s.contentVersion)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"chain": s.net.Ledger.ChainID(), "slot": s.net.Ledger.Slot()})
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}
	return s.accessLog(s.rateLimit(mux))
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(r.PathValue("addr"))
	if err != nil {
		writeProgramError(w, ledger.Errorf(ledger.CodeInvalidArgument, "%v", err))
		return
	}
	acc, err := s.net.Ledger.GetAccount(r.Context(), addr)
	if err != nil {
		writeProgramError(w, err)
		return
	}
	acc.Address = addr
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var tx domain.Transaction
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpload)).Decode(&tx); err != nil {
		writeProgramError(w, ledger.Errorf(ledger.CodeInvalidArgument, "decode transaction: %v", err))
		return
	}
	receipt, err := s.net.Ledger.Submit(r.Context(), tx)
	if err != nil {
		writeProgramError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) getSignedVAA(w http.ResponseWriter, r *http.Request) {
	chain, err := strconv.ParseUint(r.PathValue("chain"), 10, 16)
	if err != nil {
		http.Error(w, "bad chain id", http.StatusBadRequest)
		return
	}
	raw, err := hex.DecodeString(r.PathValue("emitter"))
	if err != nil {
		http.Error(w, "bad emitter", http.StatusBadRequest)
		return
	}
	emitter, err := domain.AddressFromBytes(raw)
	if err != nil {
		http.Error(w, "bad emitter", http.StatusBadRequest)
		return
	}
	seq, err := strconv.ParseUint(r.PathValue("seq"), 10, 64)
	if err != nil {
		http.Error(w, "bad sequence", http.StatusBadRequest)
		return
	}
	vaa, err := s.net.Guardian.SignedVAA(r.Context(), domain.ChainID(chain), emitter, seq)
	if errors.Is(err, apperr.ErrNotFound) {
		http.Error(w, "message not observed", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bridge.SignedVAAResponse{VAABytes: vaa})
}

func (s *Server) contentAdd(w http.ResponseWriter, r *http.Request) {
	data, err := content.ReadUpload(w, r, maxUpload)
	if err != nil {
		content.WriteError(w, err)
		return
	}
	id, err := s.content.Add(r.Context(), data)
	if err != nil {
		content.WriteError(w, err)
		return
	}
	if r.URL.Query().Get("pin") == "true" {
		if err := s.content.Pin(r.Context(), id); err != nil {
			s.log.Warn("pin on add failed", "cid", id, "err", err)
			content.WriteError(w, err)
			return
		}
	}
	content.WriteJSON(w, http.StatusOK, content.AddResponse{Name: id, Hash: id, Size: strconv.Itoa(len(data))})
}

func (s *Server) contentPin(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("arg")
	if err := s.content.Pin(r.Context(), id); err != nil {
		content.WriteError(w, err)
		return
	}
	content.WriteJSON(w, http.StatusOK, content.PinResponse{Pins: []string{id}})
}

func (s *Server) contentCat(w http.ResponseWriter, r *http.Request) {
	data, err := s.content.Cat(r.Context(), r.URL.Query().Get("arg"))
	if err != nil {
		content.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write(data)
}

func (s *Server) contentVersion(w http.ResponseWriter, r *http.Request) {
	content.WriteJSON(w, http.StatusOK, content.VersionResponse{Version: nodeVersion})
}

// writeProgramError reports err as a ledger.ProgramError body, which
// ledger.HTTPClient turns back into the original error.
func writeProgramError(w http.ResponseWriter, err error) {
	var pe *ledger.ProgramError
	if !errors.As(err, &pe) {
		pe = ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	writeJSON(w, programStatus(pe.Code), pe)
}

func programStatus(code string) int {
	switch code {
	case ledger.CodeAccountNotFound:
		return http.StatusNotFound
	case ledger.CodeUnauthorized, ledger.CodeMissingSignature:
		return http.StatusForbidden
	case ledger.CodeAlreadyInitialized, ledger.CodeAlreadyProcessed, ledger.CodeStaleState:
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r), time.Now()) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// accessLog records method, path, remote, status, bytes and duration.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.Request(route, rec.status)
		s.log.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
