package persistence

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/database/sqlite"
)

type widget struct {
	ID       int `gorm:"primaryKey"`
	Name     string
	Quantity int
	domain.Record
}

func (w *widget) EntityID() int      { return w.ID }
func (w *widget) EntityName() string { return "Widget" }

type gadget struct {
	ID       int `gorm:"primaryKey"`
	Label    string
	WidgetID int
	Widget   *widget `gorm:"foreignKey:WidgetID"`
	domain.Record
}

func (g *gadget) EntityID() int      { return g.ID }
func (g *gadget) EntityName() string { return "Gadget" }

const testSchema = `
CREATE TABLE widgets (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    name     TEXT    NOT NULL UNIQUE,
    quantity INTEGER NOT NULL DEFAULT 0,
    version  INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE gadgets (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    label     TEXT    NOT NULL,
    widget_id INTEGER NOT NULL REFERENCES widgets(id),
    version   INTEGER NOT NULL DEFAULT 1
);`

// captureHandler keeps every record for assertions.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}
	return out
}

func (h *captureHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

type published struct {
	routingKey string
	payload    []byte
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{routingKey: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.events))
	for i, e := range p.events {
		keys[i] = e.routingKey
	}
	return keys
}

type fixture struct {
	conn      database.Connection
	pc        *Context
	logs      *captureHandler
	publisher *recordingPublisher
	widgets   *Repository[widget, *widget]
	gadgets   *Repository[gadget, *gadget]
}

func newFixture(t *testing.T, breaker ...BreakerConfig) *fixture {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.Gorm().Exec(testSchema).Error)

	cfg := Config{Publisher: &recordingPublisher{}}
	if len(breaker) > 0 {
		cfg.Breaker = breaker[0]
	}

	logs := &captureHandler{}
	logger := slog.New(logs)
	pc := NewContext(conn.Gorm(), cfg, logger)

	return &fixture{
		conn:      conn,
		pc:        pc,
		logs:      logs,
		publisher: cfg.Publisher.(*recordingPublisher),
		widgets:   NewRepository[widget](pc, logger),
		gadgets:   NewRepository[gadget](pc, logger),
	}
}

// fresh reads a widget straight from the store, bypassing tracking.
func (f *fixture) fresh(t *testing.T, id int) widget {
	t.Helper()
	var w widget
	require.NoError(t, f.conn.Gorm().First(&w, id).Error)
	return w
}

func (f *fixture) addWidget(t *testing.T, name string, qty int) *widget {
	t.Helper()
	w := &widget{Name: name, Quantity: qty}
	require.NoError(t, f.widgets.Add(context.Background(), w))
	return w
}
