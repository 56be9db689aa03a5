package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpufleet/gpumon/pkg/sshutil"
	sshtesting "github.com/gpufleet/gpumon/pkg/sshutil/testing"
)

func newMockPool(dialErr error) (*Pool, *int) {
	dials := 0
	p := NewPool(time.Second)
	p.dial = func(host string, timeout time.Duration) (sshutil.SSHClient, error) {
		dials++
		if dialErr != nil {
			return nil, dialErr
		}
		return sshtesting.NewMockClient(host), nil
	}
	return p, &dials
}

func TestPoolReusesConnections(t *testing.T) {
	p, dials := newMockPool(nil)
	defer p.Close()

	c1, err := p.Get("gpu1")
	require.NoError(t, err)
	c2, err := p.Get("gpu1")
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, 1, *dials)
	assert.Equal(t, 1, p.Size())
}

func TestPoolDialError(t *testing.T) {
	p, _ := newMockPool(errors.New("dial tcp: i/o timeout"))

	_, err := p.Get("gpu1")
	require.Error(t, err)
	assert.Equal(t, 0, p.Size())
}

func TestPoolCloseOneForcesRedial(t *testing.T) {
	p, dials := newMockPool(nil)
	defer p.Close()

	_, err := p.Get("gpu1")
	require.NoError(t, err)
	p.CloseOne("gpu1")
	assert.Equal(t, 0, p.Size())

	_, err = p.Get("gpu1")
	require.NoError(t, err)
	assert.Equal(t, 2, *dials)
}

func TestPoolRunnerDropsConnectionOnTransportError(t *testing.T) {
	p, _ := newMockPool(nil)
	defer p.Close()

	client, err := p.Get("gpu1")
	require.NoError(t, err)
	mock := client.(*sshtesting.MockClient)
	mock.SetCommandResponse(TelemetryQuery, sshtesting.CommandResponse{
		Error: errors.New("ssh: session closed"),
	})

	runner := NewPoolRunner(p)
	_, _, _, err = runner.Run(context.Background(), "gpu1", TelemetryQuery)
	require.Error(t, err)
	assert.Equal(t, 0, p.Size(), "a transport failure evicts the pooled connection")
}
