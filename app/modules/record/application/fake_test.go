package recordservice

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	recorddb "github.com/demonlist-club/demonlist-backend/app/modules/record/infrastructure/repositories"
)

// FakeRecordRepository is a programmable fake for recorddb.Repository.
type FakeRecordRepository struct {
	mu    sync.Mutex
	trace []string

	GetRecordFunc        func(ctx context.Context, id int64) (*recorddb.Record, error)
	SubmitRecordFunc     func(ctx context.Context, record *recorddb.Record) error
	TransitionStatusFunc func(ctx context.Context, id int64, to recorddb.Status) (*recorddb.Record, recorddb.Status, error)
	RecordsForDemonFunc  func(ctx context.Context, demonID int64) ([]recorddb.Record, error)
	RecordsForPlayerFunc func(ctx context.Context, playerID int64) ([]recorddb.Record, error)
}

func (f *FakeRecordRepository) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, call)
}

// Trace returns the ordered list of repository calls made so far.
func (f *FakeRecordRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeRecordRepository) GetRecord(ctx context.Context, id int64) (*recorddb.Record, error) {
	f.record("GetRecord")
	if f.GetRecordFunc != nil {
		return f.GetRecordFunc(ctx, id)
	}
	return nil, recorddb.ErrRecordNotFound
}

func (f *FakeRecordRepository) SubmitRecord(ctx context.Context, record *recorddb.Record) error {
	f.record("SubmitRecord")
	if f.SubmitRecordFunc != nil {
		return f.SubmitRecordFunc(ctx, record)
	}
	record.ID = 1
	return nil
}

func (f *FakeRecordRepository) TransitionStatus(ctx context.Context, id int64, to recorddb.Status) (*recorddb.Record, recorddb.Status, error) {
	f.record("TransitionStatus")
	if f.TransitionStatusFunc != nil {
		return f.TransitionStatusFunc(ctx, id, to)
	}
	return nil, "", recorddb.ErrRecordNotFound
}

func (f *FakeRecordRepository) RecordsForDemon(ctx context.Context, demonID int64) ([]recorddb.Record, error) {
	f.record("RecordsForDemon")
	if f.RecordsForDemonFunc != nil {
		return f.RecordsForDemonFunc(ctx, demonID)
	}
	return nil, nil
}

func (f *FakeRecordRepository) RecordsForPlayer(ctx context.Context, playerID int64) ([]recorddb.Record, error) {
	f.record("RecordsForPlayer")
	if f.RecordsForPlayerFunc != nil {
		return f.RecordsForPlayerFunc(ctx, playerID)
	}
	return nil, nil
}

// fakeBus captures published messages by topic.
type fakeBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
	FailWith  error
}

func newFakeBus() *fakeBus {
	return &fakeBus{Published: make(map[string][]*message.Message)}
}

func (b *fakeBus) Publish(topic string, msgs ...*message.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWith != nil {
		return b.FailWith
	}
	b.Published[topic] = append(b.Published[topic], msgs...)
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return nil, nil
}

func (b *fakeBus) Close() error { return nil }

func (b *fakeBus) TopicCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Published[topic])
}
