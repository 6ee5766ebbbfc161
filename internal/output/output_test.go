// internal/output/output_test.go
package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fwtrace.io/internal/models"
)

func sampleRecord() *models.ActionRecord {
	return &models.ActionRecord{
		TS:     "Apr 30 13:12:33 myhost",
		Action: "UFW BLOCK",
		Proto:  "UDP",
		Src: &models.AddressInfo{
			IP:      "213.230.86.36",
			Scope:   []models.ScopeTag{models.ScopeGlobal},
			Port:    29960,
			Net:     "213.230.86.0/24",
			Name:    "UZTELECOM",
			Country: "UZ",
		},
		Dst: &models.AddressInfo{
			IP:    "192.168.0.6",
			Scope: []models.ScopeTag{models.ScopePrivate},
			Iface: "wlp2s0",
			Net:   "192.168.0.0/24",
			Port:  53233,
		},
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	require.NoError(t, r.Render(sampleRecord()))
	require.NoError(t, r.Close())

	out := buf.String()
	assert.Contains(t, out, "Apr 30 13:12:33 myhost  UFW BLOCK  UDP")
	assert.Contains(t, out, "SRC 213.230.86.36:29960  [global]")
	assert.Contains(t, out, "name=UZTELECOM")
	assert.Contains(t, out, "DST 192.168.0.6:53233  [private]")
	assert.Contains(t, out, "if=wlp2s0 net=192.168.0.0/24")
}

func TestTextRendererError(t *testing.T) {
	rec := sampleRecord()
	rec.Src = &models.AddressInfo{
		IP:    "198.160.10.4",
		Scope: []models.ScopeTag{models.ScopeGlobal},
		Err:   "lookup 198.160.10.4 failed: registry returned HTTP 404",
	}

	var buf bytes.Buffer
	r := NewTextRenderer(&buf)
	require.NoError(t, r.Render(rec))

	assert.Contains(t, buf.String(), "ERROR: lookup 198.160.10.4 failed")
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONRenderer(&buf)

	require.NoError(t, r.Render(sampleRecord()))
	require.NoError(t, r.Render(sampleRecord()))
	require.NoError(t, r.Close())

	var decoded []models.ActionRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "UFW BLOCK", decoded[0].Action)
	assert.Equal(t, "wlp2s0", decoded[0].Dst.Iface)
	assert.Equal(t, 29960, decoded[0].Src.Port)
}

func TestJSONRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONRenderer(&buf)
	require.NoError(t, r.Close())
	assert.Equal(t, "[]\n", buf.String())
}
