package rest

import (
	"github.com/seventv/common/errors"
)

type Param struct {
	v interface{}
}

func (c *Ctx) UserValue(key string) *Param {
	return &Param{c.RequestCtx.UserValue(key)}
}

// String returns a string value of the param
func (p *Param) String() (string, bool) {
	s, ok := p.v.(string)
	if !ok || s == "" {
		return "", false
	}

	return s, true
}

// Snowflake parses the param as a Discord user id
func (p *Param) Snowflake() (string, APIError) {
	s, ok := p.String()
	if !ok {
		return "", errors.ErrEmptyField()
	}

	if len(s) > 20 {
		return "", errors.ErrInvalidRequest().SetDetail("user id is too long")
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return "", errors.ErrInvalidRequest().SetDetail("user id must be numeric")
		}
	}

	return s, nil
}
