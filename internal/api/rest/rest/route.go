package rest

import (
	"net/http"
)

type Route interface {
	Config() RouteConfig
	Handler(ctx *Ctx) APIError
}

type RouteConfig struct {
	URI        string
	Method     RouteMethod
	Children   []Route
	Middleware []Middleware
}

type RouteMethod string

const (
	GET     RouteMethod = "GET"
	HEAD    RouteMethod = "HEAD"
	OPTIONS RouteMethod = "OPTIONS"
)

type Middleware = func(ctx *Ctx) APIError

type APIErrorResponse struct {
	StatusCode HttpStatusCode         `json:"status_code"`
	Status     string                 `json:"status"`
	Error      string                 `json:"error"`
	ErrorCode  int                    `json:"error_code"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

type HttpStatusCode int

const (
	OK                  HttpStatusCode = 200
	NoContent           HttpStatusCode = 204
	BadRequest          HttpStatusCode = 400
	NotFound            HttpStatusCode = 404
	MethodNotAllowed    HttpStatusCode = 405
	TooManyRequests     HttpStatusCode = 429
	InternalServerError HttpStatusCode = 500
	BadGateway          HttpStatusCode = 502
	ServiceUnavailable  HttpStatusCode = 503
	GatewayTimeout      HttpStatusCode = 504
)

// String returns the http status code in text form
func (c HttpStatusCode) String() string {
	return http.StatusText(int(c))
}
