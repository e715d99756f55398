package cache

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Store is a key-value store of plan results. Implementations are safe for
// concurrent use.
type Store[V any] interface {
	// Get returns the value and true, or the zero value and false on a miss.
	Get(ctx context.Context, key string) (V, bool, error)
	Put(ctx context.Context, key string, v V) error
	Delete(ctx context.Context, key string) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// PoseKey identifies a move by the exact bit patterns of both poses. Poses
// that differ in any bit, including the sign of zero, get different keys.
func PoseKey(from, to dynamo.Vec3) string {
	var b strings.Builder
	b.Grow(6 * 17)
	for i, v := range [6]float64{from[0], from[1], from[2], to[0], to[1], to[2]} {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return b.String()
}
