// Package memstore is an in-memory store.Store used by engine tests. It
// enforces the same version checks and uniqueness rules as the postgres store.
// Atomic serializes whole callbacks but does not roll back on error.
package memstore

import (
	"context"
	"sort"
	"sync"

	"workbridge/internal/models"
	"workbridge/internal/store"
)

type Mem struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users        map[uint]models.User
	projects     map[uint]models.Project
	bids         map[uint]models.Bid
	contracts    map[uint]models.Contract
	attachments  map[uint]models.Attachment
	approvalLogs []models.ApprovalLog
	transactions map[uint]models.Transaction
	tickets      map[uint]models.Ticket

	nextID uint
}

func New() *Mem {
	return &Mem{
		users:        make(map[uint]models.User),
		projects:     make(map[uint]models.Project),
		bids:         make(map[uint]models.Bid),
		contracts:    make(map[uint]models.Contract),
		attachments:  make(map[uint]models.Attachment),
		transactions: make(map[uint]models.Transaction),
		tickets:      make(map[uint]models.Ticket),
	}
}

var _ store.Store = (*Mem)(nil)

func (m *Mem) id() uint {
	m.nextID++
	return m.nextID
}

// SeedUser registers a user and returns it.
func (m *Mem) SeedUser(name string, role models.Role) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{ID: m.id(), FullName: name, Email: name + "@example.test", Role: role}
	m.users[u.ID] = u
	return u
}

func (m *Mem) GetUser(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Mem) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.id()
	}
	if p.Status == "" {
		p.Status = models.ProjectOpen
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *Mem) GetProject(_ context.Context, id uint) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *Mem) UpdateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; !ok {
		return store.ErrNotFound
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *Mem) ListOpenProjects(_ context.Context) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.projects {
		if p.Status == models.ProjectOpen {
			out = append(out, p)
		}
	}
	sortByID(out, func(p models.Project) uint { return p.ID })
	return out, nil
}

func (m *Mem) ListProjectsByClient(_ context.Context, clientID uint) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sortByID(out, func(p models.Project) uint { return p.ID })
	return out, nil
}

func (m *Mem) CreateBid(_ context.Context, b *models.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		b.ID = m.id()
	}
	if b.Status == "" {
		b.Status = models.BidPending
	}
	m.bids[b.ID] = *b
	return nil
}

func (m *Mem) GetBid(_ context.Context, id uint) (*models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (m *Mem) UpdateBid(_ context.Context, b *models.Bid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bids[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Version != b.Version {
		return store.ErrVersionConflict
	}
	b.Version++
	m.bids[b.ID] = *b
	return nil
}

func (m *Mem) ListBidsForProject(_ context.Context, projectID uint) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bid
	for _, b := range m.bids {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	sortByID(out, func(b models.Bid) uint { return b.ID })
	return out, nil
}

func (m *Mem) ListBidderBids(_ context.Context, projectID, bidderID uint) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bid
	for _, b := range m.bids {
		if b.ProjectID == projectID && b.BidderID == bidderID {
			out = append(out, b)
		}
	}
	sortByID(out, func(b models.Bid) uint { return b.ID })
	return out, nil
}

func (m *Mem) ListUserBids(_ context.Context, bidderID uint) ([]models.Bid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bid
	for _, b := range m.bids {
		if b.BidderID == bidderID {
			out = append(out, b)
		}
	}
	sortByID(out, func(b models.Bid) uint { return b.ID })
	return out, nil
}

func (m *Mem) CreateContract(_ context.Context, c *models.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.contracts {
		if existing.ProjectID == c.ProjectID {
			return store.ErrDuplicate
		}
	}
	if c.ID == 0 {
		c.ID = m.id()
	}
	m.contracts[c.ID] = *c
	return nil
}

func (m *Mem) GetContract(_ context.Context, id uint) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *Mem) GetContractByProject(_ context.Context, projectID uint) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.contracts {
		if c.ProjectID == projectID {
			c := c
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Mem) UpdateContract(_ context.Context, c *models.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.contracts[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Version != c.Version {
		return store.ErrVersionConflict
	}
	c.Version++
	m.contracts[c.ID] = *c
	return nil
}

func (m *Mem) ListUserContracts(_ context.Context, userID uint) ([]models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Contract
	for _, c := range m.contracts {
		if c.ClientID == userID || c.FreelancerID == userID {
			out = append(out, c)
		}
	}
	sortByID(out, func(c models.Contract) uint { return c.ID })
	return out, nil
}

func (m *Mem) CreateAttachment(_ context.Context, a *models.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = m.id()
	}
	m.attachments[a.ID] = *a
	return nil
}

func (m *Mem) UpdateAttachment(_ context.Context, a *models.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attachments[a.ID]; !ok {
		return store.ErrNotFound
	}
	m.attachments[a.ID] = *a
	return nil
}

func (m *Mem) ListAttachments(_ context.Context, contractID uint, pct models.Checkpoint) ([]models.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Attachment
	for _, a := range m.attachments {
		if a.ContractID == contractID && a.Percentage == pct {
			out = append(out, a)
		}
	}
	sortByID(out, func(a models.Attachment) uint { return a.ID })
	return out, nil
}

func (m *Mem) CountLiveAttachments(_ context.Context, contractID uint, pct models.Checkpoint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.attachments {
		if a.ContractID == contractID && a.Percentage == pct && !a.Removed {
			count++
		}
	}
	return count, nil
}

func (m *Mem) AppendApprovalLog(_ context.Context, l *models.ApprovalLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == 0 {
		l.ID = m.id()
	}
	m.approvalLogs = append(m.approvalLogs, *l)
	return nil
}

func (m *Mem) ListApprovalLogs(_ context.Context, contractID uint) ([]models.ApprovalLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ApprovalLog
	for _, l := range m.approvalLogs {
		if l.ContractID == contractID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Mem) CreateTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.transactions {
		if existing.Reference == t.Reference {
			return store.ErrDuplicate
		}
	}
	if t.ID == 0 {
		t.ID = m.id()
	}
	m.transactions[t.ID] = *t
	return nil
}

func (m *Mem) GetTransactionByReference(_ context.Context, reference string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.transactions {
		if t.Reference == reference {
			t := t
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Mem) ListContractTransactions(_ context.Context, contractID uint) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.ContractID == contractID {
			out = append(out, t)
		}
	}
	sortByID(out, func(t models.Transaction) uint { return t.ID })
	return out, nil
}

func (m *Mem) ListAllTransactions(_ context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		out = append(out, t)
	}
	sortByID(out, func(t models.Transaction) uint { return t.ID })
	return out, nil
}

func (m *Mem) CreateTicket(_ context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.id()
	}
	if t.Status == "" {
		t.Status = models.TicketRefundPending
	}
	m.tickets[t.ID] = *t
	return nil
}

func (m *Mem) GetTicket(_ context.Context, id uint) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (m *Mem) GetOpenTicketByContract(_ context.Context, contractID uint) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.ContractID == contractID && t.Status == models.TicketRefundPending {
			t := t
			return &t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Mem) UpdateTicket(_ context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tickets[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Version != t.Version {
		return store.ErrVersionConflict
	}
	t.Version++
	m.tickets[t.ID] = *t
	return nil
}

func (m *Mem) ListUserTickets(_ context.Context, userID uint) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.RaisedBy == userID {
			out = append(out, t)
		}
	}
	sortByID(out, func(t models.Ticket) uint { return t.ID })
	return out, nil
}

func (m *Mem) ListOpenTickets(_ context.Context) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.tickets {
		if t.Status == models.TicketRefundPending {
			out = append(out, t)
		}
	}
	sortByID(out, func(t models.Ticket) uint { return t.ID })
	return out, nil
}

// Atomic serializes callbacks against each other so concurrent engine
// operations observe the same mutual exclusion a database transaction gives.
func (m *Mem) Atomic(_ context.Context, fn func(store.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func sortByID[T any](items []T, id func(T) uint) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
