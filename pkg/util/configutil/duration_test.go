package configutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
)

func decodeTTL(input any) (Duration, error) {
	var out struct{ TTL Duration }
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &out,
		DecodeHook: DurationHookFunc(),
	})
	if err != nil {
		return 0, err
	}
	err = dec.Decode(map[string]any{"ttl": input})
	return out.TTL, err
}

func TestDurationHookFunc(t *testing.T) {
	for input, want := range map[any]time.Duration{
		"1m30s":  90 * time.Second,
		10:       10 * time.Second,
		int64(2): 2 * time.Second,
		0.5:      500 * time.Millisecond,
	} {
		got, err := decodeTTL(input)
		require.NoError(t, err, input)
		require.Equal(t, Duration(want), got, input)
	}

	_, err := decodeTTL("soon")
	require.Error(t, err)
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"5m"`), &d))
	require.Equal(t, Duration(5*time.Minute), d)
	require.NoError(t, json.Unmarshal([]byte(`3`), &d))
	require.Equal(t, Duration(3*time.Second), d)
	require.Error(t, json.Unmarshal([]byte(`true`), &d))

	b, err := json.Marshal(&d)
	require.NoError(t, err)
	require.Equal(t, `"3s"`, string(b))
}
