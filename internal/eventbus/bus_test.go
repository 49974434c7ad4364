package eventbus

import (
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/labelguild/internal/apiv1"
)

func TestBus(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)

	sent := b.PublishNew(apiv1.EventTypeTaskClaimed, "T1", "", map[string]string{apiv1.MetaActor: "alice"})
	got := <-ch
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, "alice", got.Metadata[apiv1.MetaActor])

	// full buffers drop rather than block
	b.PublishNew(apiv1.EventTypeTaskSkipped, "T1", "", nil)
	b.PublishNew(apiv1.EventTypeTaskSkipped, "T1", "", nil)
	require.Len(t, ch, 1)

	b.Unsubscribe(id)
	_, ok := <-ch
	assert.True(t, ok)
	_, ok = <-ch
	assert.False(t, ok)

	b.Unsubscribe(id)
}

func TestLosslessSubscriberReceivesEverything(t *testing.T) {
	b := New()
	_, ch := b.Subscribe(1, Lossless())

	var wg conc.WaitGroup
	wg.Go(func() {
		for range 5 {
			b.PublishNew(apiv1.EventTypeTaskSkipped, "T1", "", nil)
		}
	})

	var got int
	for got < 5 {
		select {
		case <-ch:
			got++
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of 5 events", got)
		}
	}
	wg.Wait()
}

func TestUnsubscribeReleasesBlockedPublish(t *testing.T) {
	b := New()
	id, _ := b.Subscribe(0, Lossless())

	published := make(chan struct{})
	go func() {
		b.PublishNew(apiv1.EventTypeTaskCreated, "T1", "", nil)
		close(published)
	}()

	b.Unsubscribe(id)
	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("publish still blocked after unsubscribe")
	}
}
