package atmostest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sagarc03/atmos"
)

var (
	errObjectNotFound = errors.New("object not found")
	errUnknownUID     = errors.New("unknown uid")
)

// Request is a request as received by the server.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Host     string
	Header   http.Header
}

// Server is an in-memory Atmos endpoint backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	secrets         map[string]string
	subtenants      map[string]string
	objects         map[string][]byte
	aliases         map[string]string // namespace path -> object location
	requests        []Request
	subtenantStatus int
	omitSubtenantID bool
}

// NewServer starts a server that accepts the given credentials.
func NewServer(creds ...atmos.Credential) *Server {
	s := newServer(creds)
	s.Server = httptest.NewServer(s.Handler())
	return s
}

// NewUnstartedServer returns a server that is not listening yet.
func NewUnstartedServer(creds ...atmos.Credential) *Server {
	s := newServer(creds)
	s.Server = httptest.NewUnstartedServer(s.Handler())
	return s
}

// NewHandler returns the Atmos API for creds without opening a listener.
func NewHandler(creds ...atmos.Credential) http.Handler {
	return newServer(creds).Handler()
}

func newServer(creds []atmos.Credential) *Server {
	s := &Server{
		secrets:    make(map[string]string, len(creds)),
		subtenants: make(map[string]string),
		objects:    make(map[string][]byte),
		aliases:    make(map[string]string),
	}
	for _, c := range creds {
		s.secrets[c.UID] = c.Secret
	}
	return s
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string {
	return s.Listener.Addr().String()
}

// Handler returns the router serving the Atmos API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.authenticate)

	r.Put(atmos.SubtenantURIBase, s.handleCreateSubtenant)
	r.Get(atmos.SubtenantURIBase+"/{id}", s.handleGetSubtenant)
	r.Head(atmos.SubtenantURIBase+"/{id}", s.handleGetSubtenant)
	r.Delete(atmos.SubtenantURIBase+"/{id}", s.handleDeleteSubtenant)

	objects := atmos.ObjectsURIBase + "/*"
	r.Post(atmos.ObjectsURIBase, s.handleCreate)
	r.Get(objects, s.handleGet)
	r.Head(objects, s.handleGet)
	r.Put(objects, s.handleUpdate)
	r.Delete(objects, s.handleDelete)

	namespace := atmos.NamespaceURIBase + "/*"
	r.Post(namespace, s.handleCreate)
	r.Get(namespace, s.handleGet)
	r.Head(namespace, s.handleGet)
	r.Put(namespace, s.handleUpdate)
	r.Delete(namespace, s.handleDelete)

	return r
}

// SetSubtenantStatus makes subtenant creation answer with status instead of
// issuing an id. Zero restores normal behaviour.
func (s *Server) SetSubtenantStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtenantStatus = status
}

// OmitSubtenantID makes subtenant creation succeed without the id header.
func (s *Server) OmitSubtenantID(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitSubtenantID = omit
}

// Subtenant returns the subtenant issued for uid.
func (s *Server) Subtenant(uid string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.subtenants[uid]
	return id, ok
}

// Object returns the content stored under an /rest/objects or
// /rest/namespace path.
func (s *Server) Object(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[s.resolve(path)]
	return data, ok
}

// resolve maps a namespace path to the location it aliases. s.mu must be held.
func (s *Server) resolve(path string) string {
	if location, ok := s.aliases[path]; ok {
		return location
	}
	return path
}

// Requests returns the requests received so far, rejected ones included.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Host:     r.Host,
			Header:   r.Header.Clone(),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// authenticate checks x-emc-uid and x-emc-signature. A uid prefixed by a
// subtenant must carry the subtenant issued for it.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subtenant, uid := atmos.SplitUID(r.Header.Get(atmos.HeaderUID))

		s.mu.Lock()
		secret, known := s.secrets[uid]
		issued := s.subtenants[uid]
		s.mu.Unlock()

		if !known {
			HandleError(w, fmt.Errorf("%w: %q", errUnknownUID, uid))
			return
		}
		if subtenant != "" && subtenant != issued {
			HandleError(w, fmt.Errorf("%w: subtenant %q not issued for %q", errUnknownUID, subtenant, uid))
			return
		}

		path := r.URL.Path
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}
		if err := atmos.Verify(r.Header, nil, r.Method, path, secret); err != nil {
			HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreateSubtenant(w http.ResponseWriter, r *http.Request) {
	_, uid := atmos.SplitUID(r.Header.Get(atmos.HeaderUID))

	s.mu.Lock()
	status := s.subtenantStatus
	omit := s.omitSubtenantID
	id, ok := s.subtenants[uid]
	if status == 0 && !ok {
		id = newID()
		s.subtenants[uid] = id
	}
	s.mu.Unlock()

	if status != 0 {
		WriteError(w, status, CodeInvalidRequest, "subtenant creation refused")
		return
	}

	if !omit {
		w.Header().Set(atmos.HeaderSubtenantID, id)
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetSubtenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, uid := atmos.SplitUID(r.Header.Get(atmos.HeaderUID))

	s.mu.Lock()
	issued := s.subtenants[uid]
	s.mu.Unlock()

	if issued != id {
		HandleError(w, errObjectNotFound)
		return
	}
	w.Header().Set(atmos.HeaderSubtenantID, id)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteSubtenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, uid := atmos.SplitUID(r.Header.Get(atmos.HeaderUID))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subtenants[uid] != id {
		HandleError(w, errObjectNotFound)
		return
	}
	delete(s.subtenants, uid)
	w.WriteHeader(http.StatusNoContent)
}

// handleCreate stores a new object. Creates on /rest/objects get an id from
// the server; creates on /rest/namespace alias the path to that id.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		HandleError(w, err)
		return
	}

	id := newID()
	location := atmos.ObjectsURIBase + "/" + id

	s.mu.Lock()
	if strings.HasPrefix(r.URL.Path, atmos.NamespaceURIBase+"/") {
		if old, ok := s.aliases[r.URL.Path]; ok {
			delete(s.objects, old)
		}
		s.aliases[r.URL.Path] = location
	}
	s.objects[location] = data
	s.mu.Unlock()

	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	data, ok := s.Object(r.URL.Path)
	if !ok {
		HandleError(w, errObjectNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		HandleError(w, err)
		return
	}

	s.mu.Lock()
	key := s.resolve(r.URL.Path)
	_, ok := s.objects[key]
	if ok {
		s.objects[key] = data
	}
	s.mu.Unlock()

	if !ok {
		HandleError(w, errObjectNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	key := s.resolve(r.URL.Path)
	_, ok := s.objects[key]
	delete(s.objects, key)
	for path, location := range s.aliases {
		if location == key {
			delete(s.aliases, path)
		}
	}
	s.mu.Unlock()

	if !ok {
		HandleError(w, errObjectNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
