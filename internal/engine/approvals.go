package engine

import (
	"context"
	"errors"

	"workbridge/internal/metrics"
	"workbridge/internal/models"
	"workbridge/internal/store"
)

// DecideSubmission applies the client's approve/reject to the pending
// submission. The "only while ProjectSubmitted" guard is what makes a second
// decision on the same submission fail instead of silently overwriting.
func (e *Engine) DecideSubmission(ctx context.Context, contractID uint, decision Decision, remark string, actor Actor) (*models.Contract, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, validationf("InvalidDecision", "decision must be approve or reject")
	}
	if decision == DecisionReject && remark == "" {
		return nil, validationf("InvalidDecision", "a remark is required when rejecting a submission")
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

		if contract.ClientID != actor.ID && actor.Role != models.RoleAdmin {
			return authorizationf("NotContractClient", "only the client or an admin can decide submissions")
		}
		if contract.Status != models.ContractProjectSubmitted || contract.PendingPercentage == nil {
			return conflictf(CodeNoPendingSubmission, "no submission is awaiting a decision")
		}

		pct := *contract.PendingPercentage
		action := models.ActionRejected

		if decision == DecisionApprove {
			action = models.ActionApproved
			contract.CompletionPercentage = int(pct)
			contract.PendingPercentage = nil
			if contract.CompletionPercentage == 100 {
				contract.Status = models.ContractCompleted
			} else {
				contract.Status = models.ContractWorking
			}

			// The approver's remark lands on the live attachments of the
			// checkpoint alongside the audit entry.
			attachments, err := s.ListAttachments(ctx, contractID, pct)
			if err != nil {
				return err
			}
			for i := range attachments {
				a := attachments[i]
				if a.Removed {
					continue
				}
				a.ClientRemark = remark
				if err := s.UpdateAttachment(ctx, &a); err != nil {
					return err
				}
			}
		} else {
			// Completion and pending stay put: the freelancer must resubmit
			// the same checkpoint.
			contract.Status = models.ContractReworkNeeded
		}

		if err := s.UpdateContract(ctx, contract); err != nil {
			return err
		}

		count, err := s.CountLiveAttachments(ctx, contractID, pct)
		if err != nil {
			return err
		}
		return s.AppendApprovalLog(ctx, &models.ApprovalLog{
			ContractID:      contractID,
			Percentage:      pct,
			Action:          action,
			Remarks:         remark,
			ActorID:         actor.ID,
			ActorRole:       actor.Role,
			AttachmentCount: count,
		})
	})
	if err != nil {
		return nil, err
	}

	if decision == DecisionApprove {
		metrics.Submissions.WithLabelValues(string(models.ActionApproved)).Inc()
	} else {
		metrics.Submissions.WithLabelValues(string(models.ActionRejected)).Inc()
	}
	e.emit(ctx, Event{
		Type:       EventSubmissionDecided,
		ProjectID:  contract.ProjectID,
		ContractID: contract.ID,
		ActorID:    actor.ID,
		Data: map[string]any{
			"decision":   string(decision),
			"completion": contract.CompletionPercentage,
			"status":     string(contract.Status),
		},
	})
	return contract, nil
}
