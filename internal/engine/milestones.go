package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"workbridge/internal/metrics"
	"workbridge/internal/models"
	"workbridge/internal/store"
)

// maxLiveAttachments caps the non-removed attachments per checkpoint.
const maxLiveAttachments = 5

// allowedExtensions is the document/spreadsheet/image/archive allow-list for
// delivered files.
var allowedExtensions = map[string]bool{
	".doc": true, ".docx": true, ".odt": true, ".txt": true, ".pdf": true,
	".xls": true, ".xlsx": true, ".ods": true, ".csv": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true,
}

// AllowedExtension reports whether the file extension (with or without the
// leading dot) may be attached to a submission.
func AllowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return allowedExtensions[ext]
}

// AttachmentInput is the opaque blob descriptor for one delivered file; the
// bytes themselves are already in the blob store.
type AttachmentInput struct {
	FileName        string
	StorageKey      string
	StoragePublicID string
}

// SubmissionInput is one milestone submission: new attachments, optional
// tombstones of earlier live attachments at the same checkpoint, and the
// freelancer's remark.
type SubmissionInput struct {
	Percentage  models.Checkpoint
	Attachments []AttachmentInput
	RemoveIDs   []uint
	Remark      string
}

// SubmitMilestone records a freelancer's delivery at a checkpoint and hands
// the contract to the client for decision. In Working state the checkpoint
// must be the next one above the approved completion; in ReworkNeeded it must
// resubmit the pending checkpoint. Approved checkpoints are read-only history.
func (e *Engine) SubmitMilestone(ctx context.Context, contractID uint, in SubmissionInput, actor Actor) (*models.Contract, error) {
	if !in.Percentage.Valid() {
		return nil, validationf(CodeInvalidCheckpoint, "percentage must be one of 25, 50, 75, 100")
	}
	if len(in.Attachments) == 0 {
		return nil, validationf("InvalidSubmission", "at least one attachment is required")
	}
	if in.Remark == "" {
		return nil, validationf("InvalidSubmission", "a remark is required")
	}
	for _, a := range in.Attachments {
		if a.FileName == "" || a.StorageKey == "" {
			return nil, validationf("InvalidSubmission", "attachment file name and storage key are required")
		}
		if !AllowedExtension(filepath.Ext(a.FileName)) {
			return nil, validationf("InvalidSubmission", "file type %q is not allowed", filepath.Ext(a.FileName))
		}
	}

	var contract *models.Contract
	err := e.atomicRetry(ctx, func(s store.Store) error {
		var err error
		contract, err = s.GetContract(ctx, contractID)
		if errors.Is(err, store.ErrNotFound) {
			return notFound("contract")
		}
		if err != nil {
			return err
		}

		if contract.FreelancerID != actor.ID {
			return authorizationf("NotContractFreelancer", "only the contract's freelancer can submit work")
		}
		if !contract.AcceptsSubmission() {
			return conflictf("SubmissionNotAccepted", "contract is %s and does not accept submissions", contract.Status)
		}

		switch contract.Status {
		case models.ContractReworkNeeded:
			if contract.PendingPercentage == nil || in.Percentage != *contract.PendingPercentage {
				return validationf(CodeInvalidCheckpoint, "rework must resubmit the %d%% checkpoint", pendingOrZero(contract))
			}
		default:
			next, ok := models.NextCheckpoint(contract.CompletionPercentage)
			if !ok || in.Percentage != next {
				return validationf(CodeInvalidCheckpoint, "next submittable checkpoint is %d%%", int(next))
			}
		}

		remove := make(map[uint]bool, len(in.RemoveIDs))
		for _, id := range in.RemoveIDs {
			remove[id] = true
		}
		existing, err := s.ListAttachments(ctx, contractID, in.Percentage)
		if err != nil {
			return err
		}
		live := 0
		for i := range existing {
			a := existing[i]
			if a.Removed {
				continue
			}
			if remove[a.ID] {
				a.Removed = true
				if err := s.UpdateAttachment(ctx, &a); err != nil {
					return err
				}
				continue
			}
			live++
		}
		if live+len(in.Attachments) > maxLiveAttachments {
			return validationf("InvalidSubmission", "at most %d live attachments per checkpoint", maxLiveAttachments)
		}

		for _, a := range in.Attachments {
			att := &models.Attachment{
				ContractID:       contractID,
				Percentage:       in.Percentage,
				FileName:         a.FileName,
				Extension:        strings.ToLower(filepath.Ext(a.FileName)),
				StorageKey:       a.StorageKey,
				StoragePublicID:  a.StoragePublicID,
				FreelancerRemark: in.Remark,
			}
			if err := s.CreateAttachment(ctx, att); err != nil {
				return err
			}
		}

		pct := in.Percentage
		contract.PendingPercentage = &pct
		contract.Status = models.ContractProjectSubmitted
		if err := s.UpdateContract(ctx, contract); err != nil {
			return err
		}

		return s.AppendApprovalLog(ctx, &models.ApprovalLog{
			ContractID:      contractID,
			Percentage:      in.Percentage,
			Action:          models.ActionSubmitted,
			Remarks:         in.Remark,
			ActorID:         actor.ID,
			ActorRole:       actor.Role,
			AttachmentCount: live + len(in.Attachments),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.Submissions.WithLabelValues(string(models.ActionSubmitted)).Inc()
	e.emit(ctx, Event{
		Type:       EventSubmissionPending,
		ProjectID:  contract.ProjectID,
		ContractID: contract.ID,
		ActorID:    actor.ID,
		Data:       map[string]any{"percentage": int(in.Percentage)},
	})
	return contract, nil
}

func pendingOrZero(c *models.Contract) int {
	if c.PendingPercentage == nil {
		return 0
	}
	return int(*c.PendingPercentage)
}
