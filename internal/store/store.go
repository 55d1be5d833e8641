package store

import (
	"context"
	"errors"

	"workbridge/internal/models"
)

var (
	// ErrNotFound is returned when the requested aggregate does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a conditional update lost the race
	// on an aggregate's version column.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned when an insert violates a uniqueness rule
	// (one contract per project, one transaction per gateway reference).
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the durable ledger behind the engagement lifecycle engine. Updates
// on Bid, Contract and Ticket are conditional on the aggregate's version and
// fail with ErrVersionConflict when stale. ApprovalLog and Transaction are
// append-only.
type Store interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)

	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	ListOpenProjects(ctx context.Context) ([]models.Project, error)
	ListProjectsByClient(ctx context.Context, clientID uint) ([]models.Project, error)

	CreateBid(ctx context.Context, b *models.Bid) error
	GetBid(ctx context.Context, id uint) (*models.Bid, error)
	UpdateBid(ctx context.Context, b *models.Bid) error
	ListBidsForProject(ctx context.Context, projectID uint) ([]models.Bid, error)
	ListBidderBids(ctx context.Context, projectID, bidderID uint) ([]models.Bid, error)
	ListUserBids(ctx context.Context, bidderID uint) ([]models.Bid, error)

	CreateContract(ctx context.Context, c *models.Contract) error
	GetContract(ctx context.Context, id uint) (*models.Contract, error)
	GetContractByProject(ctx context.Context, projectID uint) (*models.Contract, error)
	UpdateContract(ctx context.Context, c *models.Contract) error
	ListUserContracts(ctx context.Context, userID uint) ([]models.Contract, error)

	CreateAttachment(ctx context.Context, a *models.Attachment) error
	UpdateAttachment(ctx context.Context, a *models.Attachment) error
	ListAttachments(ctx context.Context, contractID uint, pct models.Checkpoint) ([]models.Attachment, error)
	CountLiveAttachments(ctx context.Context, contractID uint, pct models.Checkpoint) (int, error)

	AppendApprovalLog(ctx context.Context, l *models.ApprovalLog) error
	ListApprovalLogs(ctx context.Context, contractID uint) ([]models.ApprovalLog, error)

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListContractTransactions(ctx context.Context, contractID uint) ([]models.Transaction, error)
	ListAllTransactions(ctx context.Context) ([]models.Transaction, error)

	CreateTicket(ctx context.Context, t *models.Ticket) error
	GetTicket(ctx context.Context, id uint) (*models.Ticket, error)
	GetOpenTicketByContract(ctx context.Context, contractID uint) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, t *models.Ticket) error
	ListUserTickets(ctx context.Context, userID uint) ([]models.Ticket, error)
	ListOpenTickets(ctx context.Context) ([]models.Ticket, error)

	// Atomic runs fn inside a single transaction scoped to the callback. All
	// reads and writes issued through the passed Store commit or roll back
	// together.
	Atomic(ctx context.Context, fn func(Store) error) error
}
