// Package ptahtest provides an in-process stand-in for the Ptah control plane.
package ptahtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Request is a deployment request received by the fake control plane.
type Request struct {
	Service string
	Header  http.Header
	Body    []byte
}

// ControlPlane answers every deploy call with a fixed status code and body.
type ControlPlane struct {
	Server *httptest.Server

	mu         sync.Mutex
	statusCode int
	response   string
	requests   []Request
}

func NewControlPlane(statusCode int, response string) *ControlPlane {
	c := &ControlPlane{
		statusCode: statusCode,
		response:   response,
	}

	router := chi.NewRouter()
	router.Use(middleware.AllowContentType("application/json"))
	router.Post("/api/v0/services/{service}/deploy", c.deploy)

	c.Server = httptest.NewServer(router)

	return c
}

func (c *ControlPlane) deploy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, Request{
		Service: chi.URLParam(r, "service"),
		Header:  r.Header.Clone(),
		Body:    body,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(c.statusCode)
	_, _ = io.WriteString(w, c.response)
}

func (c *ControlPlane) URL() string {
	return c.Server.URL
}

func (c *ControlPlane) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

func (c *ControlPlane) Close() {
	c.Server.Close()
}
