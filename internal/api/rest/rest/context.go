package rest

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/seventv/common/errors"
	"github.com/seventv/common/utils"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Ctx struct {
	*fasthttp.RequestCtx
}

type APIError = errors.APIError

func (c *Ctx) JSON(status HttpStatusCode, v interface{}) APIError {
	b, err := json.Marshal(v)
	if err != nil {
		c.SetStatusCode(InternalServerError)

		return errors.ErrInternalServerError().
			SetDetail("JSON Parsing Failed").
			SetFields(errors.Fields{"JSON_ERROR": err.Error()})
	}

	c.SetStatusCode(status)
	c.SetContentType("application/json")
	c.SetBody(b)

	return nil
}

// Raw writes an already encoded JSON body
func (c *Ctx) Raw(status HttpStatusCode, b []byte) APIError {
	c.SetStatusCode(status)
	c.SetContentType("application/json")
	c.SetBody(b)

	return nil
}

func (c *Ctx) SetStatusCode(code HttpStatusCode) {
	c.RequestCtx.SetStatusCode(int(code))
}

func (c *Ctx) StatusCode() HttpStatusCode {
	return HttpStatusCode(c.RequestCtx.Response.StatusCode())
}

// Query returns a query string argument, empty when absent
func (c *Ctx) Query(key string) string {
	return utils.B2S(c.QueryArgs().Peek(key))
}

// ClientIP prefers the address reported by the edge proxy
func (c *Ctx) ClientIP() string {
	ip := utils.B2S(c.Request.Header.Peek("Cf-Connecting-IP"))
	if ip == "" {
		ip = c.RemoteIP().String()
	}

	return ip
}

func (c *Ctx) Log() *zap.SugaredLogger {
	return zap.S().Named("api/rest").With(
		"request_id", strconv.FormatUint(c.ID(), 10),
		"route", utils.B2S(c.Path()),
	)
}
