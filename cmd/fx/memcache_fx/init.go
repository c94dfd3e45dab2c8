package memcache_fx

import (
	"go.uber.org/fx"

	mem "cognipdf/pkg/memcache"
)

var Module = fx.Provide(provideMemcacheClient)

func provideMemcacheClient() mem.VerificationCodeStore {
	return mem.NewVerificationCodes()
}
