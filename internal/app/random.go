package app

import (
	"github.com/valyala/fastrand"

	"impostor/internal/domain"
)

// FastRandomizer draws indexes from the fastrand per-thread generator
type FastRandomizer struct{}

var _ domain.Randomizer = FastRandomizer{}

// Intn returns a uniform index in [0, n). It returns 0 for n <= 0.
func (FastRandomizer) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(fastrand.Uint32n(uint32(n)))
}
