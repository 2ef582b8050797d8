package dispatch_test

import (
	"testing"
	"time"

	"github.com/aretw0/tactic/internal/testutils"
	"github.com/aretw0/tactic/pkg/dispatch"
	"github.com/aretw0/tactic/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Immediate(t *testing.T) {
	d := dispatch.New()
	var got []domain.Message
	d.Register("bot", dispatch.ReceiverFunc(func(m domain.Message) bool {
		got = append(got, m)
		return true
	}))

	require.NoError(t, d.Dispatch(domain.Message{Kind: domain.MsgTakeDamage, Receiver: "bot", Payload: 10}))
	require.Len(t, got, 1)
	assert.Equal(t, 10, got[0].Payload)

	err := d.Dispatch(domain.Message{Kind: domain.MsgTakeDamage, Receiver: "ghost"})
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestDispatcher_Delayed(t *testing.T) {
	clock := testutils.NewClock()
	d := dispatch.New(dispatch.WithClock(clock))

	var order []string
	d.Register("bot", dispatch.ReceiverFunc(func(m domain.Message) bool {
		order = append(order, m.Sender)
		return true
	}))

	require.NoError(t, d.DispatchAfter(domain.Message{Kind: domain.MsgItemGone, Receiver: "bot", Sender: "late"}, 2*time.Second))
	require.NoError(t, d.DispatchAfter(domain.Message{Kind: domain.MsgItemGone, Receiver: "bot", Sender: "early"}, time.Second))
	require.NoError(t, d.DispatchAfter(domain.Message{Kind: domain.MsgItemGone, Receiver: "bot", Sender: "early-2"}, time.Second))
	assert.Equal(t, 3, d.Pending())

	assert.Zero(t, d.Flush())
	clock.Advance(time.Second)
	assert.Equal(t, 2, d.Flush())
	assert.Equal(t, []string{"early", "early-2"}, order)

	d.Unregister("bot")
	clock.Advance(time.Second)
	assert.Zero(t, d.Flush(), "messages for missing receivers are dropped")
	assert.Zero(t, d.Pending())
}
