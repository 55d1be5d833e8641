package engine_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"workbridge/internal/engine"
	"workbridge/internal/models"
	"workbridge/internal/store/memstore"
)

// fakeGateway hands out deterministic orders and replays whatever captures
// the test primes it with.
type fakeGateway struct {
	mu       sync.Mutex
	orders   int
	captures map[string]*engine.GatewayCapture
	orderErr error
	// failures makes the first N CreateOrder calls fail before succeeding.
	failures int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{captures: make(map[string]*engine.GatewayCapture)}
}

func (g *fakeGateway) CreateOrder(_ context.Context, req engine.OrderRequest) (*engine.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	if g.failures > 0 {
		g.failures--
		return nil, fmt.Errorf("gateway timeout")
	}
	g.orders++
	ref := "ORD-" + strconv.Itoa(g.orders)
	g.captures[ref] = &engine.GatewayCapture{
		Reference:   ref,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Verified:    true,
		Metadata:    req.Metadata,
	}
	return &engine.GatewayOrder{
		Reference:        ref,
		AuthorizationURL: "https://checkout.test/" + ref,
		AccessCode:       "AC-" + ref,
		AmountMinor:      req.AmountMinor,
		Currency:         req.Currency,
	}, nil
}

func (g *fakeGateway) VerifyCapture(_ context.Context, reference string) (*engine.GatewayCapture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	capture, ok := g.captures[reference]
	if !ok {
		return &engine.GatewayCapture{Reference: reference, Verified: false}, nil
	}
	return capture, nil
}

// prime installs a capture without going through CreateOrder.
func (g *fakeGateway) prime(capture *engine.GatewayCapture) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captures[capture.Reference] = capture
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []engine.Event
}

func (n *fakeNotifier) Publish(_ context.Context, ev engine.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *fakeNotifier) byType(t engine.EventType) []engine.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []engine.Event
	for _, ev := range n.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// fakeDeduper remembers every (scope, key) pair it has granted.
type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: make(map[string]bool)}
}

func (d *fakeDeduper) AcquireOnce(_ context.Context, scope, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := scope + ":" + key
	if d.seen[k] {
		return false
	}
	d.seen[k] = true
	return true
}

type harness struct {
	store    *memstore.Mem
	gateway  *fakeGateway
	notifier *fakeNotifier
	deduper  *fakeDeduper
	engine   *engine.Engine

	client     models.User
	freelancer models.User
	admin      models.User
}

func newHarness(t *testing.T, opts engine.Options) *harness {
	t.Helper()
	h := &harness{
		store:    memstore.New(),
		gateway:  newFakeGateway(),
		notifier: &fakeNotifier{},
		deduper:  newFakeDeduper(),
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = time.Millisecond
	}
	h.engine = engine.New(h.store, h.gateway, h.notifier, h.deduper, nil, opts)
	h.client = h.store.SeedUser("carol", models.RoleClient)
	h.freelancer = h.store.SeedUser("frank", models.RoleFreelancer)
	h.admin = h.store.SeedUser("ada", models.RoleAdmin)
	return h
}

func (h *harness) clientActor() engine.Actor {
	return engine.Actor{ID: h.client.ID, Role: models.RoleClient}
}

func (h *harness) freelancerActor() engine.Actor {
	return engine.Actor{ID: h.freelancer.ID, Role: models.RoleFreelancer}
}

func (h *harness) adminActor() engine.Actor {
	return engine.Actor{ID: h.admin.ID, Role: models.RoleAdmin}
}

func actorFor(u models.User) engine.Actor {
	return engine.Actor{ID: u.ID, Role: u.Role}
}

// openProject seeds a project owned by the harness client.
func (h *harness) openProject(t *testing.T, budgetMinor int64) *models.Project {
	t.Helper()
	p := &models.Project{
		ClientID:            h.client.ID,
		Title:               "Landing page",
		Description:         "Build and ship a landing page",
		BudgetMinor:         budgetMinor,
		Currency:            "USD",
		Deadline:            time.Now().Add(30 * 24 * time.Hour),
		RequiredFreelancers: 1,
		Status:              models.ProjectOpen,
	}
	if err := h.store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

// contractAt seeds a contract directly in the given status, bypassing the
// bid flow, for tests that start mid-lifecycle.
func (h *harness) contractAt(t *testing.T, budgetMinor int64, status models.ContractStatus) *models.Contract {
	t.Helper()
	p := h.openProject(t, budgetMinor)
	p.Status = models.ProjectContracted
	if err := h.store.UpdateProject(context.Background(), p); err != nil {
		t.Fatalf("seed project status: %v", err)
	}
	c := &models.Contract{
		ProjectID:    p.ID,
		ClientID:     h.client.ID,
		FreelancerID: h.freelancer.ID,
		BudgetMinor:  budgetMinor,
		Currency:     "USD",
		Status:       status,
	}
	if err := h.store.CreateContract(context.Background(), c); err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return c
}

// submitAt pushes a seeded contract through a submission at pct.
func (h *harness) submitAt(t *testing.T, contractID uint, pct models.Checkpoint) *models.Contract {
	t.Helper()
	c, err := h.engine.SubmitMilestone(context.Background(), contractID, engine.SubmissionInput{
		Percentage: pct,
		Attachments: []engine.AttachmentInput{
			{FileName: "deliverable.pdf", StorageKey: fmt.Sprintf("https://files.test/%d-%d.pdf", contractID, pct)},
		},
		Remark: "work delivered",
	}, h.freelancerActor())
	if err != nil {
		t.Fatalf("submit at %d%%: %v", int(pct), err)
	}
	return c
}
