package rio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnetctl/rnet-go/pkg/rnet"
)

// fakeController answers GET commands from a fixed attribute table. Unknown
// keys get an E line. Answers are delivered synchronously from SendLine.
type fakeController struct {
	mu     sync.Mutex
	values map[string]string
	sent   []string
	client *Client
	silent bool
}

func (f *fakeController) SendLine(cmd string) error {
	f.mu.Lock()
	f.sent = append(f.sent, cmd)
	silent := f.silent
	f.mu.Unlock()

	key, ok := strings.CutPrefix(cmd, "GET ")
	if !ok || silent {
		return nil
	}
	reply := "E Invalid Command"
	if v, found := f.values[key]; found {
		reply = `S ` + key + `="` + v + `"`
	}
	l, err := ParseLine(reply)
	if err != nil {
		return err
	}
	f.client.HandleLine(l)
	return nil
}

func (f *fakeController) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newFakeClient(values map[string]string, timeout time.Duration) (*Client, *fakeController) {
	fc := &fakeController{values: values}
	c := NewClient(fc, ClientConfig{Timeout: timeout})
	fc.client = c
	return c, fc
}

func TestPendingTableKeyedCorrelation(t *testing.T) {
	table := NewPendingTable()
	vol := table.Begin("C[1].Z[1].volume")
	name := table.Begin("C[1].Z[2].name")

	// Responses arrive out of request order.
	l, err := ParseLine(`S C[1].Z[2].name="Kitchen"`)
	require.NoError(t, err)
	assert.True(t, table.Resolve(l))

	l, err = ParseLine(`S C[1].Z[1].volume="20"`)
	require.NoError(t, err)
	assert.True(t, table.Resolve(l))

	got, err := name.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", got.Value)

	got, err = vol.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20", got.Value)
	assert.Zero(t, table.Len())
}

func TestPendingTableSameKeyFIFO(t *testing.T) {
	table := NewPendingTable()
	first := table.Begin("C[1].type")
	second := table.Begin("C[1].type")

	l, _ := ParseLine(`S C[1].type="MCA-C5"`)
	assert.True(t, table.Resolve(l))

	select {
	case <-first.Done():
	default:
		t.Fatal("first request not completed")
	}
	select {
	case <-second.Done():
		t.Fatal("second request completed early")
	default:
	}
	assert.Equal(t, 1, table.Len())
}

func TestPendingTableUnsolicited(t *testing.T) {
	table := NewPendingTable()
	p := table.Begin("C[1].Z[1].volume")

	for _, s := range []string{"S", `N C[1].Z[2].volume="3"`, `S C[1].Z[2].volume="4"`, "N System is on"} {
		l, err := ParseLine(s)
		require.NoError(t, err)
		assert.False(t, table.Resolve(l), s)
	}
	assert.Equal(t, 1, table.Len())

	l, _ := ParseLine("E Invalid Command")
	assert.True(t, table.Resolve(l))
	_, err := p.Result()
	assert.ErrorIs(t, err, ErrErrorResponse)
}

func TestPendingTableNotifyAnswersRequest(t *testing.T) {
	table := NewPendingTable()
	p := table.Begin("C[1].Z[1].volume")

	l, err := ParseLine(`N C[1].Z[1].volume="12"`)
	require.NoError(t, err)
	assert.True(t, table.Resolve(l))

	got, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TagNotify, got.Tag)
	assert.Equal(t, "12", got.Value)
	assert.Zero(t, table.Len())

	// The S that follows has nothing left to answer.
	l, err = ParseLine(`S C[1].Z[1].volume="12"`)
	require.NoError(t, err)
	assert.False(t, table.Resolve(l))
}

func TestPendingTableFailAll(t *testing.T) {
	table := NewPendingTable()
	a := table.Begin("a")
	b := table.Begin("b")

	boom := errors.New("boom")
	table.FailAll(boom)

	_, err := a.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = b.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, table.Len())
}

func TestClientGet(t *testing.T) {
	c, fc := newFakeClient(map[string]string{"C[1].Z[2].volume": "25"}, time.Second)

	line, err := c.Get(context.Background(), "C[1].Z[2]", AttrVolume)
	require.NoError(t, err)
	assert.Equal(t, "25", line.Value)
	assert.Equal(t, []string{"GET C[1].Z[2].volume"}, fc.commands())
	assert.Zero(t, c.Pending())
}

func TestClientGetErrorResponse(t *testing.T) {
	c, _ := newFakeClient(nil, time.Second)

	_, err := c.Get(context.Background(), "C[2]", AttrType)
	assert.ErrorIs(t, err, ErrErrorResponse)
}

func TestClientGetTimeout(t *testing.T) {
	c, fc := newFakeClient(nil, 20*time.Millisecond)
	fc.silent = true

	start := time.Now()
	_, err := c.Get(context.Background(), "C[1]", AttrType)
	assert.ErrorIs(t, err, ErrRequestTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Zero(t, c.Pending())
}

func TestClientGetContextCanceled(t *testing.T) {
	c, fc := newFakeClient(nil, time.Minute)
	fc.silent = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, "C[1]", AttrType)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientClose(t *testing.T) {
	c, fc := newFakeClient(nil, time.Minute)
	fc.silent = true

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), "C[1]", AttrType)
		errCh <- err
	}()

	require.Eventually(t, func() bool { return c.Pending() == 1 }, time.Second, time.Millisecond)
	c.Close(nil)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClientClosed)
	case <-time.After(time.Second):
		t.Fatal("Get did not return after Close")
	}
}

func TestDiscover(t *testing.T) {
	values := map[string]string{
		"C[1].type":      "MCA-C5",
		"C[3].type":      "MBX-PRE",
		"C[1].Z[1].name": "Kitchen",
		"C[1].Z[2].name": "Den",
		"C[3].Z[1].name": "Patio",
		"S[1].name":      "Tuner",
		"S[2].name":      "Streamer",
	}
	c, fc := newFakeClient(values, time.Second)

	sys, err := Discover(context.Background(), c)
	require.NoError(t, err)

	require.Len(t, sys.Controllers, 2)
	assert.Equal(t, "MCA-C5", sys.Controllers[0].Type)
	assert.Len(t, sys.Controllers[0].Zones, 8)
	assert.Equal(t, ZoneName{Zone: 1, Name: "Kitchen"}, sys.Controllers[0].Zones[0])
	assert.Equal(t, ZoneName{Zone: 3, Name: ""}, sys.Controllers[0].Zones[2])
	assert.Equal(t, 3, sys.Controllers[1].Controller)
	assert.Equal(t, []ZoneName{{Zone: 1, Name: "Patio"}}, sys.Controllers[1].Zones)

	require.Len(t, sys.Sources, 9)
	assert.Equal(t, "Tuner", sys.Sources[0])
	assert.Equal(t, "Streamer", sys.Sources[1])

	cmds := fc.commands()
	assert.Equal(t, "GET C[1].type", cmds[0])
	assert.Equal(t, "GET C[1].Z[1].name", cmds[1])
	assert.Equal(t, "GET S[9].name", cmds[len(cmds)-1])

	table, ok := sys.Table(1)
	require.True(t, ok)
	assert.Equal(t, 8, table.ZoneCount)
	assert.Equal(t, "Kitchen", table.ZoneNames[0])
	assert.Equal(t, 9, table.SourceCount)

	_, ok = sys.Table(2)
	assert.False(t, ok)
}

func TestDiscoverTimeout(t *testing.T) {
	c, fc := newFakeClient(nil, 10*time.Millisecond)
	fc.silent = true

	_, err := Discover(context.Background(), c)
	assert.ErrorIs(t, err, ErrRequestTimeout)
}

func TestControllerType(t *testing.T) {
	tests := []struct {
		model          string
		zones, sources int
	}{
		{"MBX-PRE", 1, 1},
		{"XSource", 1, 1},
		{"MCA-88X", 8, 8},
		{"MCA-C5", 8, 8},
		{"MCA-C3", 6, 6},
		{"", 6, 6},
	}
	for _, tt := range tests {
		zones, sources := ControllerType(tt.model)
		assert.Equal(t, tt.zones, zones, tt.model)
		assert.Equal(t, tt.sources, sources, tt.model)
	}
}

func TestCommands(t *testing.T) {
	zone := ZoneAddress(1, 2)

	assert.Equal(t, "GET C[1].Z[2].volume", Get(zone.String(), AttrVolume))
	assert.Equal(t, `SET C[1].Z[2].name="Den"`, Set(zone.String(), AttrName, "Den"))
	assert.Equal(t, "WATCH C[1].Z[2] ON", Watch(zone.String(), true))
	assert.Equal(t, "WATCH System OFF", WatchSystem(false))
	assert.Equal(t, "EVENT C[1].Z[2]!ZoneOn", SetState(zone, true))
	assert.Equal(t, "EVENT C[1].Z[2]!ZoneOff", SetState(zone, false))
	assert.Equal(t, "EVENT C[1].Z[2]!KeyRelease SelectSource 1", SetSource(zone, 0))
	assert.Equal(t, "EVENT C[1].Z[2]!KeyPress Volume 30", Volume(zone, 30))
	assert.Equal(t, "EVENT C[1].Z[2]!KeyPress VolumeUp", VolumeUp(zone))
	assert.Equal(t, "EVENT C[1].Z[2]!KeyPress VolumeDown", VolumeDown(zone))
	assert.Equal(t, "WATCH C[1].Z[2] ON", GetInfo(zone, "all"))
	assert.Equal(t, "GET C[1].Z[2].bass", GetInfo(zone, AttrBass))
	assert.Equal(t, "GET C[1].Z[2].volume\r", Terminate(Get(zone.String(), AttrVolume)))
	assert.Equal(t, "S\r", Terminate("S\r"))

	key, err := KeyPress(zone, rnet.KindKeypadNext)
	require.NoError(t, err)
	assert.Equal(t, "EVENT C[1].Z[2]!KeyPress Next", key)
	_, err = KeyPress(zone, rnet.KindZoneVolume)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestSetParam(t *testing.T) {
	zone := ZoneAddress(2, 3)
	tests := []struct {
		param rnet.Param
		level int
		want  string
	}{
		{rnet.ParamBass, 8, `SET C[2].Z[3].bass="-2"`},
		{rnet.ParamTreble, 20, `SET C[2].Z[3].treble="10"`},
		{rnet.ParamBalance, 10, `SET C[2].Z[3].balance="0"`},
		{rnet.ParamLoudness, 0, `SET C[2].Z[3].loudness="OFF"`},
		{rnet.ParamLoudness, 1, `SET C[2].Z[3].loudness="ON"`},
		{rnet.ParamTurnOnVolume, 15, `SET C[2].Z[3].turnOnVolume="15"`},
		{rnet.ParamMute, 1, "EVENT C[2].Z[3]!ZoneMuteOn"},
		{rnet.ParamMute, 0, "EVENT C[2].Z[3]!ZoneMuteOff"},
		{rnet.ParamDoNotDisturb, 1, "EVENT C[2].Z[3]!DoNotDisturb ON"},
		{rnet.ParamPartyMode, 0, "EVENT C[2].Z[3]!PartyMode OFF"},
	}

	for _, tt := range tests {
		got, err := SetParam(zone, tt.param, tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := SetParam(zone, rnet.Param(9), 0)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestClientOnResult(t *testing.T) {
	type result struct {
		key string
		err error
	}
	var results []result

	fc := &fakeController{values: map[string]string{"C[1].type": "MCA-88X"}}
	c := NewClient(fc, ClientConfig{
		Timeout: 20 * time.Millisecond,
		OnResult: func(key string, elapsed time.Duration, err error) {
			assert.GreaterOrEqual(t, elapsed, time.Duration(0))
			results = append(results, result{key, err})
		},
	})
	fc.client = c

	_, err := c.Get(context.Background(), "C[1]", AttrType)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "C[2]", AttrType)
	require.ErrorIs(t, err, ErrErrorResponse)

	fc.silent = true
	_, err = c.Get(context.Background(), "C[3]", AttrType)
	require.ErrorIs(t, err, ErrRequestTimeout)

	require.Len(t, results, 3)
	assert.Equal(t, "C[1].type", results[0].key)
	assert.NoError(t, results[0].err)
	assert.ErrorIs(t, results[1].err, ErrErrorResponse)
	assert.Equal(t, "C[3].type", results[2].key)
	assert.ErrorIs(t, results[2].err, ErrRequestTimeout)
}
