package events

import (
	"SecretKeeper/internal/model"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultBuffer: размер очереди по умолчанию.
const DefaultBuffer = 256

const handleTimeout = 5 * time.Second

// ErrUnknownKind: событие неизвестного типа.
var ErrUnknownKind = errors.New("unknown side effect kind")

type VersionSink interface {
	AddVersions(ctx context.Context, versions []model.SecretVersion) error
	MarkDeleted(ctx context.Context, secretIDs []string) error
}

type AuditSink interface {
	CreateAction(ctx context.Context, a *model.AuditAction) error
	CreateLog(ctx context.Context, l *model.AuditLog) error
}

type SnapshotSink interface {
	TakeSnapshot(ctx context.Context, workspaceID, environment string, folderID *string) (*model.SecretSnapshot, error)
}

type TelemetrySink interface {
	Capture(ctx context.Context, ev TelemetryEvent) error
}

// Sinks содержит внешних получателей. Telemetry может быть nil, тогда телеметрия не отправляется.
type Sinks struct {
	Versions  VersionSink
	Audit     AuditSink
	Snapshots SnapshotSink
	Telemetry TelemetrySink
}

// Stats считает сбои и потерянные события. Реализуется metrics.Collector.
type Stats interface {
	SideEffectFailed(kind string)
	SideEffectDropped(kind string)
}

// Dispatcher разбирает очередь побочных эффектов в отдельной горутине.
// Ошибки получателей логируются и не доходят до вызывающего.
type Dispatcher struct {
	sinks  Sinks
	logger *zap.SugaredLogger
	stats  Stats

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

// NewDispatcher запускает обработчик очереди. stats может быть nil.
func NewDispatcher(sinks Sinks, buffer int, logger *zap.SugaredLogger, stats Stats) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	d := &Dispatcher{
		sinks:  sinks,
		logger: logger,
		stats:  stats,
		queue:  make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish ставит события в очередь и не блокируется: при полной очереди событие теряется.
func (d *Dispatcher) Publish(evs ...Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, ev := range evs {
		if d.closed {
			d.drop(ev, "dispatcher closed")
			continue
		}
		select {
		case d.queue <- ev:
		default:
			d.drop(ev, "queue full")
		}
	}
}

func (d *Dispatcher) drop(ev Event, reason string) {
	d.logger.Warnw("Side effect dropped", "kind", ev.Kind, "workspace", ev.WorkspaceID, "reason", reason)
	if d.stats != nil {
		d.stats.SideEffectDropped(string(ev.Kind))
	}
}

// Close дожидается обработки уже поставленных событий. Повторный вызов безопасен.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.handleSafe(ev); err != nil {
			d.logger.Warnw("Side effect failed", "kind", ev.Kind, "workspace", ev.WorkspaceID, "error", err)
			if d.stats != nil {
				d.stats.SideEffectFailed(string(ev.Kind))
			}
		}
	}
}

func (d *Dispatcher) handleSafe(ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	return d.handle(ctx, ev)
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case KindVersionsAdded:
		return d.sinks.Versions.AddVersions(ctx, ev.Versions)
	case KindVersionsDeleted:
		return d.sinks.Versions.MarkDeleted(ctx, ev.SecretIDs)
	case KindAuditLogged:
		return d.audit(ctx, ev)
	case KindSnapshotRequested:
		_, err := d.sinks.Snapshots.TakeSnapshot(ctx, ev.WorkspaceID, ev.Environment, ev.FolderID)
		return err
	case KindTelemetryCaptured:
		if d.sinks.Telemetry == nil || ev.Telemetry == nil {
			return nil
		}
		return d.sinks.Telemetry.Capture(ctx, *ev.Telemetry)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
}

// audit: сначала действие, затем запись журнала со ссылкой на него.
func (d *Dispatcher) audit(ctx context.Context, ev Event) error {
	if ev.Audit == nil {
		return nil
	}
	actors := []string{ev.Audit.Actor.UserID}
	action := &model.AuditAction{
		Name:        ev.Audit.Action,
		ActorIDs:    actors,
		WorkspaceID: ev.WorkspaceID,
		SecretIDs:   ev.Audit.SecretIDs,
	}
	if err := d.sinks.Audit.CreateAction(ctx, action); err != nil {
		return fmt.Errorf("create audit action: %w", err)
	}
	return d.sinks.Audit.CreateLog(ctx, &model.AuditLog{
		ActorIDs:    actors,
		WorkspaceID: ev.WorkspaceID,
		ActionIDs:   []string{action.ID},
		Channel:     ev.Audit.Actor.Channel,
		IPAddress:   ev.Audit.Actor.IP,
	})
}
