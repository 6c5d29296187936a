package forms

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSerial(t *testing.T) {
	t.Run("Plain", func(t *testing.T) {
		spec := &SerialSpec{FieldKey: "order_no"}
		assert.Equal(t, "7", FormatSerial(spec, 7))
	})

	t.Run("Padded", func(t *testing.T) {
		spec := &SerialSpec{PadZeros: true, Length: 5}
		assert.Equal(t, "00042", FormatSerial(spec, 42))
	})

	t.Run("PadShorterThanValue", func(t *testing.T) {
		spec := &SerialSpec{PadZeros: true, Length: 3}
		assert.Equal(t, "12345", FormatSerial(spec, 12345))
	})

	t.Run("PrefixSuffix", func(t *testing.T) {
		spec := &SerialSpec{Prefix: "INV-", Suffix: "/26", PadZeros: true, Length: 4}
		assert.Equal(t, "INV-0009/26", FormatSerial(spec, 9))
	})

	t.Run("NoPadWithoutFlag", func(t *testing.T) {
		spec := &SerialSpec{Length: 5}
		assert.Equal(t, "42", FormatSerial(spec, 42))
	})
}

// Serials come from a single atomic increment, so concurrent mints must be
// unique and gapless. The increment here stands in for the store's $inc.
func TestSerialMintingConcurrent(t *testing.T) {
	spec := &SerialSpec{Prefix: "ORD-", PadZeros: true, Length: 6}

	var counter int64
	next := func() int64 { return atomic.AddInt64(&counter, 1) }

	const workers = 50
	serials := make([]string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			serials[i] = FormatSerial(spec, next())
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, s := range serials {
		require.False(t, seen[s], "duplicate serial %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, int64(workers), counter)
	assert.Contains(t, seen, "ORD-000001")
	assert.Contains(t, seen, "ORD-000050")
}
