package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmitThrottle_IntervaloPorEntorno(t *testing.T) {
	assert.Equal(t, 120*time.Second, NewSubmitThrottle("beta").Interval())
	assert.Equal(t, 5*time.Second, NewSubmitThrottle("produccion").Interval())
	assert.Equal(t, 5*time.Second, NewSubmitThrottle("").Interval())
}

func TestWait_EspaciaLosEnvios(t *testing.T) {
	th := &SubmitThrottle{interval: 50 * time.Millisecond}
	ctx := context.Background()

	inicio := time.Now()
	require.NoError(t, th.Wait(ctx)) // primer slot: inmediato
	require.NoError(t, th.Wait(ctx))
	require.NoError(t, th.Wait(ctx))
	transcurrido := time.Since(inicio)

	assert.GreaterOrEqual(t, transcurrido, 100*time.Millisecond,
		"tres envíos deben abarcar al menos dos intervalos")
}

func TestWait_ConcurrenciaReservaSlots(t *testing.T) {
	th := &SubmitThrottle{interval: 30 * time.Millisecond}
	ctx := context.Background()

	var mu sync.Mutex
	var marcas []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, th.Wait(ctx))
			mu.Lock()
			marcas = append(marcas, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Cuatro goroutines → los slots quedan espaciados: el lapso total
	// cubre al menos tres intervalos.
	var min, max time.Time
	for _, m := range marcas {
		if min.IsZero() || m.Before(min) {
			min = m
		}
		if m.After(max) {
			max = m
		}
	}
	assert.GreaterOrEqual(t, max.Sub(min), 80*time.Millisecond)
}

func TestWait_CancelacionDeContexto(t *testing.T) {
	th := &SubmitThrottle{interval: time.Hour}
	ctx := context.Background()

	require.NoError(t, th.Wait(ctx)) // consume el slot inmediato

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := th.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
