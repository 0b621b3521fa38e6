package blindindex

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
)

// Params: параметры argon2id.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultParams задаёт боевые параметры: 3 прохода, 64 MiB, 1 поток, 32 байта.
// Индексы, посчитанные с другими параметрами, не совпадут с сохранёнными.
var DefaultParams = Params{Time: 3, MemoryKiB: 64 * 1024, Threads: 1, KeyLen: 32}

// SaltSource отдаёт расшифрованную соль workspace.
type SaltSource interface {
	GetDecryptedSalt(ctx context.Context, workspaceID string) ([]byte, error)
}

// Observer получает длительность каждого вычисления хэша.
type Observer interface {
	ObserveBlindIndex(d time.Duration)
}

// Generator считает blind index для имён секретов.
type Generator struct {
	salts    SaltSource
	params   Params
	observer Observer
}

// NewGenerator создаёт генератор. observer может быть nil.
func NewGenerator(salts SaltSource, params Params, observer Observer) *Generator {
	return &Generator{salts: salts, params: params, observer: observer}
}

// ComputeWithSalt: детерминированный blind index имени на заданной соли.
func (g *Generator) ComputeWithSalt(name string, salt []byte) string {
	start := time.Now()
	raw := argon2.IDKey([]byte(name), salt, g.params.Time, g.params.MemoryKiB, g.params.Threads, g.params.KeyLen)
	if g.observer != nil {
		g.observer.ObserveBlindIndex(time.Since(start))
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// Compute считает blind index имени для workspace.
func (g *Generator) Compute(ctx context.Context, name, workspaceID string) (string, error) {
	salt, err := g.salts.GetDecryptedSalt(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(salt)
	return g.ComputeWithSalt(name, salt), nil
}

// ComputeMany считает индексы для набора имён: соль расшифровывается один раз,
// каждое уникальное имя хэшируется один раз. Результат: имя -> blind index.
func (g *Generator) ComputeMany(ctx context.Context, workspaceID string, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}
	salt, err := g.salts.GetDecryptedSalt(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(salt)

	for _, n := range names {
		if _, ok := out[n]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[n] = g.ComputeWithSalt(n, salt)
	}
	return out, nil
}
