package presence

import (
	"errors"
	"testing"
	"time"

	"github.com/nxyyspace/api/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestEncodeInitialize(t *testing.T) {
	b, err := encodeInitialize([]string{"1137513168965476352", "442626774841556992"})
	testutil.IsNil(t, err, "encode initialize")

	require.JSONEq(t, `{"op":2,"d":{"subscribe_to_ids":["1137513168965476352","442626774841556992"]}}`, string(b))

	b, err = encodeInitialize(nil)
	testutil.IsNil(t, err, "encode empty initialize")

	require.JSONEq(t, `{"op":2,"d":{"subscribe_to_ids":[]}}`, string(b))
}

func TestEncodeHeartbeat(t *testing.T) {
	b, err := encodeHeartbeat()
	testutil.IsNil(t, err, "encode heartbeat")

	testutil.Assert(t, `{"op":3}`, string(b), "heartbeat frame")
}

func TestDecodeHello(t *testing.T) {
	msg, err := Decode([]byte(`{"op":1,"d":{"heartbeat_interval":30000}}`))
	require.NoError(t, err)

	hello, ok := msg.(Hello)
	require.True(t, ok)
	testutil.Assert(t, 30*time.Second, hello.HeartbeatInterval, "heartbeat interval")

	msg, err = Decode([]byte(`{"op":1,"d":null}`))
	require.NoError(t, err)
	testutil.Assert(t, time.Duration(0), msg.(Hello).HeartbeatInterval, "hello without interval")
}

func TestDecodeSingleRecordEvent(t *testing.T) {
	msg, err := Decode([]byte(`{
		"op": 0,
		"t": "PRESENCE_UPDATE",
		"d": {
			"discord_user": {"id": "1", "username": "a"},
			"discord_status": "dnd",
			"listening_to_spotify": false,
			"activities": [{"id": "x", "name": "Game", "type": 0}]
		}
	}`))
	require.NoError(t, err)

	evt, ok := msg.(Event)
	require.True(t, ok)
	testutil.Assert(t, EventTypePresenceUpdate, evt.Type, "event type")
	require.Len(t, evt.Records, 1)
	testutil.Assert(t, "1", evt.Records[0].UserID(), "user id")
	testutil.Assert(t, StatusDND, evt.Records[0].DiscordStatus, "status")
}

func TestDecodeInitStateMap(t *testing.T) {
	msg, err := Decode([]byte(`{
		"op": 0,
		"t": "INIT_STATE",
		"d": {
			"2": {"discord_user": {"id": "2"}, "discord_status": "idle", "activities": []},
			"1": {"discord_user": {"id": ""}, "discord_status": "online", "activities": []},
			"3": null
		}
	}`))
	require.NoError(t, err)

	evt := msg.(Event)
	require.Len(t, evt.Records, 2)
	testutil.Assert(t, "1", evt.Records[0].UserID(), "missing id is taken from the key")
	testutil.Assert(t, "2", evt.Records[1].UserID(), "records are ordered by id")
}

func TestDecodeNullEvent(t *testing.T) {
	msg, err := Decode([]byte(`{"op":0,"t":"INIT_STATE","d":null}`))
	require.NoError(t, err)
	require.Empty(t, msg.(Event).Records)
}

func TestDecodeUnknownOpcode(t *testing.T) {
	msg, err := Decode([]byte(`{"op":7,"d":{}}`))
	require.NoError(t, err)

	unknown, ok := msg.(Unknown)
	require.True(t, ok)
	testutil.Assert(t, Opcode(7), unknown.Op, "opcode")
	testutil.Assert(t, "UNKNOWN(7)", unknown.Op.String(), "opcode name")
}

func TestDecodeMalformed(t *testing.T) {
	for _, raw := range []string{
		`{not json`,
		`{"d":{}}`,
		`{"op":0,"t":"PRESENCE_UPDATE","d":"nope"}`,
		`{"op":0,"t":"PRESENCE_UPDATE","d":{"discord_user":{"username":"a"}}}`,
	} {
		_, err := Decode([]byte(raw))
		require.Error(t, err, raw)
		require.True(t, errors.Is(err, ErrMalformedMessage), raw)
	}
}
