package providers

import (
	"errors"

	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func (v *CnfValidator) Validate() error {
	vd := validate.Struct(v.conf)
	if !vd.Validate() {
		return vd.Errors
	}
	if v.conf.Storage.Driver == "sqlite" && v.conf.Storage.SQLitePath == "" {
		return errors.New("storage.sqlitePath is required for the sqlite driver")
	}
	if v.conf.Storage.Driver == "redis" && v.conf.Storage.Redis.Addr == "" {
		return errors.New("storage.redis.addr is required for the redis driver")
	}
	return nil
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}
