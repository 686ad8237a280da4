package marketdata

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"stock-signal-bot/internal/types"
)

// StaticProvider synthesizes a deterministic random-walk daily series
// per symbol. It stands in for a real market-data collaborator in
// DRY_RUN mode and in tests.
type StaticProvider struct {
	now func() time.Time
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{now: time.Now}
}

func (p *StaticProvider) RecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	end := p.now().UTC().Truncate(24 * time.Hour)
	base := 50.0 + rng.Float64()*200.0

	bars := make([]types.Bar, 0, n)
	price := base
	for i := n - 1; i >= 0; i-- {
		price *= 1.0 + (rng.Float64()-0.5)*0.04
		high := price * (1.0 + rng.Float64()*0.02)
		low := price * (1.0 - rng.Float64()*0.02)
		bars = append(bars, types.Bar{
			Ts:    end.AddDate(0, 0, -i),
			Open:  low + (high-low)*rng.Float64(),
			High:  high,
			Low:   low,
			Close: price,
			Vol:   1_000_000 + rng.Float64()*4_000_000,
		})
	}
	return bars, nil
}
