package demonservice

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	demondb "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories"
)

// ------------------------
// Fake Demon Repo
// ------------------------

// FakeDemonRepository provides a programmable stub for demondb.Repository.
type FakeDemonRepository struct {
	trace []string

	GetDemonFunc     func(ctx context.Context, id int64) (*demondb.Demon, error)
	CurrentListFunc  func(ctx context.Context) ([]demondb.Demon, error)
	AddDemonFunc     func(ctx context.Context, demon *demondb.Demon, actingUserID int64) error
	PatchDemonFunc   func(ctx context.Context, id int64, patch demondb.DemonPatch, actingUserID int64) (*demondb.Demon, *demondb.AuditLogEntry, error)
	RemoveDemonFunc  func(ctx context.Context, id int64, actingUserID int64) (*demondb.Demon, error)
	AuditLogFunc     func(ctx context.Context, demonID int64) ([]demondb.AuditLogEntry, error)
	DemonsAsOfFunc   func(ctx context.Context, ts time.Time) ([]demondb.Demon, error)
	ChangesAfterFunc func(ctx context.Context, ts time.Time) ([]demondb.AuditLogEntry, error)
}

var _ demondb.Repository = (*FakeDemonRepository)(nil)

func NewFakeDemonRepository() *FakeDemonRepository {
	return &FakeDemonRepository{trace: []string{}}
}

func (f *FakeDemonRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeDemonRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeDemonRepository) GetDemon(ctx context.Context, id int64) (*demondb.Demon, error) {
	f.record("GetDemon")
	if f.GetDemonFunc != nil {
		return f.GetDemonFunc(ctx, id)
	}
	return nil, demondb.ErrDemonNotFound
}

func (f *FakeDemonRepository) CurrentList(ctx context.Context) ([]demondb.Demon, error) {
	f.record("CurrentList")
	if f.CurrentListFunc != nil {
		return f.CurrentListFunc(ctx)
	}
	return nil, nil
}

func (f *FakeDemonRepository) AddDemon(ctx context.Context, demon *demondb.Demon, actingUserID int64) error {
	f.record("AddDemon")
	if f.AddDemonFunc != nil {
		return f.AddDemonFunc(ctx, demon, actingUserID)
	}
	return nil
}

func (f *FakeDemonRepository) PatchDemon(ctx context.Context, id int64, patch demondb.DemonPatch, actingUserID int64) (*demondb.Demon, *demondb.AuditLogEntry, error) {
	f.record("PatchDemon")
	if f.PatchDemonFunc != nil {
		return f.PatchDemonFunc(ctx, id, patch, actingUserID)
	}
	return nil, nil, demondb.ErrDemonNotFound
}

func (f *FakeDemonRepository) RemoveDemon(ctx context.Context, id int64, actingUserID int64) (*demondb.Demon, error) {
	f.record("RemoveDemon")
	if f.RemoveDemonFunc != nil {
		return f.RemoveDemonFunc(ctx, id, actingUserID)
	}
	return nil, demondb.ErrDemonNotFound
}

func (f *FakeDemonRepository) AuditLog(ctx context.Context, demonID int64) ([]demondb.AuditLogEntry, error) {
	f.record("AuditLog")
	if f.AuditLogFunc != nil {
		return f.AuditLogFunc(ctx, demonID)
	}
	return nil, nil
}

func (f *FakeDemonRepository) DemonsAsOf(ctx context.Context, ts time.Time) ([]demondb.Demon, error) {
	f.record("DemonsAsOf")
	if f.DemonsAsOfFunc != nil {
		return f.DemonsAsOfFunc(ctx, ts)
	}
	return nil, nil
}

func (f *FakeDemonRepository) ChangesAfter(ctx context.Context, ts time.Time) ([]demondb.AuditLogEntry, error) {
	f.record("ChangesAfter")
	if f.ChangesAfterFunc != nil {
		return f.ChangesAfterFunc(ctx, ts)
	}
	return nil, nil
}

// ------------------------
// Fake Event Bus
// ------------------------

// FakeEventBus records published messages per topic.
type FakeEventBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: make(map[string][]*message.Message)}
}

func (f *FakeEventBus) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published[topic] = append(f.Published[topic], msgs...)
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

// TopicCount returns how many messages were published on a topic.
func (f *FakeEventBus) TopicCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Published[topic])
}
