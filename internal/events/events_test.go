package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMulti_DeliversToEveryPublisher(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	healthy := &recordingPublisher{}

	err := Multi{failing, nil, healthy}.Publish(context.Background(), Event{Type: TypeInvoiceCreated, InvoiceNo: "INV-001"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	require.Len(t, healthy.events, 1)
	assert.Equal(t, "INV-001", healthy.events[0].InvoiceNo)
	assert.Len(t, failing.events, 1)
}

func TestMulti_EmptyIsNoop(t *testing.T) {
	assert.NoError(t, Multi{}.Publish(context.Background(), Event{}))
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
