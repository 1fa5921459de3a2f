package hostscan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"netsecparse/internal/diag"
)

const sampleReport = `<?xml version="1.0"?>
<nmaprun scanner="nmap">
  <host>
    <status state="up"/>
    <address addr="192.168.1.1" addrtype="ipv4"/>
    <address addr="AA:BB:CC:DD:EE:FF" addrtype="mac" vendor="TestVendor"/>
    <hostnames><hostname name="router.local" type="PTR"/></hostnames>
    <ports>
      <port protocol="tcp" portid="80">
        <state state="open"/>
        <service name="http" product="nginx" version="1.24.0"/>
        <script id="banner" output="nginx/1.24.0"/>
      </port>
      <port protocol="tcp" portid="443">
        <state state="open"/>
        <service name="https"/>
      </port>
    </ports>
    <os>
      <osmatch name="Linux 5.X" accuracy="95"/>
      <osmatch name="Linux 4.X" accuracy="90"/>
    </os>
  </host>
</nmaprun>`

func TestParseHostWithPorts(t *testing.T) {
	out, err := Parse(context.Background(), []byte(sampleReport))
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	require.Empty(t, out.Diagnostics)

	host := out.Records[0]
	require.Equal(t, "192.168.1.1", host.Address)
	require.Equal(t, "AA:BB:CC:DD:EE:FF", host.MAC)
	require.Equal(t, "TestVendor", host.Vendor)
	require.Equal(t, "router.local", host.Hostname)
	require.Equal(t, "up", host.Status)
	require.Equal(t, "Linux 5.X", host.OSGuess)
	require.InDelta(t, 0.95, host.Confidence, 1e-9)

	require.Len(t, host.Ports, 2)
	require.Equal(t, uint16(80), host.Ports[0].Number)
	require.Equal(t, "tcp", host.Ports[0].Protocol)
	require.Equal(t, "open", host.Ports[0].State)
	require.Equal(t, "http", host.Ports[0].Service)
	require.Equal(t, "nginx", host.Ports[0].Product)
	require.Equal(t, "1.24.0", host.Ports[0].Version)
	require.Equal(t, "nginx/1.24.0", host.Ports[0].Banner)
	require.Equal(t, uint16(443), host.Ports[1].Number)
	require.Empty(t, host.Ports[1].Banner)
}

func TestParseEmptyReport(t *testing.T) {
	out, err := Parse(context.Background(), []byte(`<?xml version="1.0"?><nmaprun scanner="nmap"></nmaprun>`))
	require.NoError(t, err)
	require.Empty(t, out.Records)
	require.Empty(t, out.Diagnostics)
}

func TestParseHostMissingAddress(t *testing.T) {
	doc := `<nmaprun>
  <host>
    <status state="up"/>
    <address addr="10.0.0.1" addrtype="ipv4"/>
  </host>
  <host>
    <status state="up"/>
  </host>
</nmaprun>`
	out, err := Parse(context.Background(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	require.Equal(t, "10.0.0.1", out.Records[0].Address)
	require.Len(t, out.Diagnostics, 1)
	require.Equal(t, diag.MalformedRecord, out.Diagnostics[0].Reason)
}

func TestParseMalformedDocumentIsFatal(t *testing.T) {
	out, err := Parse(context.Background(), []byte(`<nmaprun><host></nmaprun>`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedDocument))
	require.Nil(t, out)
}

func TestParseInvalidPortID(t *testing.T) {
	doc := `<nmaprun>
  <host>
    <address addr="10.0.0.2" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="notaport"><state state="open"/></port>
      <port protocol="tcp" portid="22"><state state="open"/></port>
    </ports>
  </host>
</nmaprun>`
	out, err := Parse(context.Background(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	require.Len(t, out.Records[0].Ports, 1)
	require.Equal(t, uint16(22), out.Records[0].Ports[0].Number)
	require.Len(t, out.Diagnostics, 1)
}

func TestParseDuplicatePortsRetained(t *testing.T) {
	doc := `<nmaprun>
  <host>
    <address addr="10.0.0.3" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="53"><state state="open"/></port>
      <port protocol="udp" portid="53"><state state="open"/></port>
      <port protocol="tcp" portid="53"><state state="filtered"/></port>
    </ports>
  </host>
</nmaprun>`
	out, err := Parse(context.Background(), []byte(doc))
	require.NoError(t, err)
	require.Len(t, out.Records[0].Ports, 3)
	require.Equal(t, "filtered", out.Records[0].Ports[2].State)
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := Parse(ctx, []byte(sampleReport))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)
	require.Empty(t, out.Records)
}

func TestParseIdempotent(t *testing.T) {
	a, err := Parse(context.Background(), []byte(sampleReport))
	require.NoError(t, err)
	b, err := Parse(context.Background(), []byte(sampleReport))
	require.NoError(t, err)
	require.Equal(t, a.Records, b.Records)
	require.Equal(t, a.Diagnostics, b.Diagnostics)
}
