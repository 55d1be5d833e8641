package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"workbridge/internal/models"
)

const pgUniqueViolation = "23505"

// GormStore implements Store on top of gorm/postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) CreateProject(ctx context.Context, p *models.Project) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) UpdateProject(ctx context.Context, p *models.Project) error {
	return translate(s.db.WithContext(ctx).Save(p).Error)
}

func (s *GormStore) ListOpenProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ProjectOpen).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, translate(err)
}

func (s *GormStore) ListProjectsByClient(ctx context.Context, clientID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, translate(err)
}

func (s *GormStore) CreateBid(ctx context.Context, b *models.Bid) error {
	return translate(s.db.WithContext(ctx).Create(b).Error)
}

func (s *GormStore) GetBid(ctx context.Context, id uint) (*models.Bid, error) {
	var b models.Bid
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// UpdateBid writes the bid conditionally on the version it was read at and
// bumps the version. A stale write changes no rows and fails.
func (s *GormStore) UpdateBid(ctx context.Context, b *models.Bid) error {
	readVersion := b.Version
	b.Version++
	res := s.db.WithContext(ctx).Model(&models.Bid{}).
		Where("id = ? AND version = ?", b.ID, readVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(b)
	if res.Error != nil {
		b.Version = readVersion
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		b.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

func (s *GormStore) ListBidsForProject(ctx context.Context, projectID uint) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.db.WithContext(ctx).
		Preload("Bidder").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&bids).Error
	return bids, translate(err)
}

func (s *GormStore) ListBidderBids(ctx context.Context, projectID, bidderID uint) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND bidder_id = ?", projectID, bidderID).
		Order("created_at ASC").
		Find(&bids).Error
	return bids, translate(err)
}

func (s *GormStore) ListUserBids(ctx context.Context, bidderID uint) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.db.WithContext(ctx).
		Preload("Project").
		Where("bidder_id = ?", bidderID).
		Order("created_at DESC").
		Find(&bids).Error
	return bids, translate(err)
}

func (s *GormStore) CreateContract(ctx context.Context, c *models.Contract) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) GetContract(ctx context.Context, id uint) (*models.Contract, error) {
	var c models.Contract
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) GetContractByProject(ctx context.Context, projectID uint) (*models.Contract, error) {
	var c models.Contract
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *GormStore) UpdateContract(ctx context.Context, c *models.Contract) error {
	readVersion := c.Version
	c.Version++
	res := s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("id = ? AND version = ?", c.ID, readVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(c)
	if res.Error != nil {
		c.Version = readVersion
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		c.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

func (s *GormStore) ListUserContracts(ctx context.Context, userID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := s.db.WithContext(ctx).
		Preload("Client").Preload("Freelancer").Preload("Project").
		Where("client_id = ? OR freelancer_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, translate(err)
}

func (s *GormStore) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormStore) UpdateAttachment(ctx context.Context, a *models.Attachment) error {
	return translate(s.db.WithContext(ctx).Save(a).Error)
}

func (s *GormStore) ListAttachments(ctx context.Context, contractID uint, pct models.Checkpoint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.WithContext(ctx).
		Where("contract_id = ? AND percentage = ?", contractID, pct).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, translate(err)
}

func (s *GormStore) CountLiveAttachments(ctx context.Context, contractID uint, pct models.Checkpoint) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Attachment{}).
		Where("contract_id = ? AND percentage = ? AND removed = false", contractID, pct).
		Count(&count).Error
	return int(count), translate(err)
}

func (s *GormStore) AppendApprovalLog(ctx context.Context, l *models.ApprovalLog) error {
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

func (s *GormStore) ListApprovalLogs(ctx context.Context, contractID uint) ([]models.ApprovalLog, error) {
	var logs []models.ApprovalLog
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, translate(err)
}

func (s *GormStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.WithContext(ctx).Where("reference = ?", reference).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *GormStore) ListContractTransactions(ctx context.Context, contractID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&txns).Error
	return txns, translate(err)
}

func (s *GormStore) ListAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&txns).Error
	return txns, translate(err)
}

func (s *GormStore) CreateTicket(ctx context.Context, t *models.Ticket) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

func (s *GormStore) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	var t models.Ticket
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *GormStore) GetOpenTicketByContract(ctx context.Context, contractID uint) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.WithContext(ctx).
		Where("contract_id = ? AND status = ?", contractID, models.TicketRefundPending).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *GormStore) UpdateTicket(ctx context.Context, t *models.Ticket) error {
	readVersion := t.Version
	t.Version++
	res := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ? AND version = ?", t.ID, readVersion).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(t)
	if res.Error != nil {
		t.Version = readVersion
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		t.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

func (s *GormStore) ListUserTickets(ctx context.Context, userID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Preload("Contract").
		Where("raised_by = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, translate(err)
}

func (s *GormStore) ListOpenTickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Preload("Contract").Preload("Raiser").
		Where("status = ?", models.TicketRefundPending).
		Order("created_at ASC").
		Find(&tickets).Error
	return tickets, translate(err)
}

func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
