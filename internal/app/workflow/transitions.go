// Package workflow implements the asset lifecycle state machine.
//
// Every status change goes through Next, a single transition table keyed by
// (from status, action). Engine operations are pure: they take an Asset
// value and return a new one, leaving the input untouched when they fail.
package workflow

import (
	"fmt"

	"github.com/dalemusser/assetflow/internal/app/system/apperr"
	"github.com/dalemusser/assetflow/internal/domain/models"
)

// Action is an operation that may change an asset's status.
type Action string

const (
	ActionSubmit         Action = "submit"
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionRequestChanges Action = "request_changes"
	ActionReserve        Action = "reserve"
	ActionSetScheduled   Action = "set_scheduled"
	ActionGoLive         Action = "go_live"
	ActionArchive        Action = "archive"
	// ActionUpdate edits descriptive fields and keeps the current status.
	ActionUpdate Action = "update"
)

// targets maps each status-changing action to the status it produces.
// Every non-archived status accepts every action; archived accepts none.
var targets = map[Action]models.AssetStatus{
	ActionSubmit:         models.AssetInReview,
	ActionApprove:        models.AssetApproved,
	ActionReject:         models.AssetRejected,
	ActionRequestChanges: models.AssetChangesRequested,
	ActionReserve:        models.AssetScheduled,
	ActionSetScheduled:   models.AssetScheduled,
	ActionGoLive:         models.AssetLive,
	ActionArchive:        models.AssetArchived,
}

// Next returns the status an asset in from moves to when action is applied.
// It fails with a conflict error when from is archived and with a
// validation error for unknown statuses or actions.
func Next(from models.AssetStatus, action Action) (models.AssetStatus, error) {
	if !from.IsValid() {
		return "", apperr.Validation(fmt.Sprintf("unknown asset status %q", from))
	}
	to, ok := targets[action]
	if action == ActionUpdate {
		to, ok = from, true
	}
	if !ok {
		return "", apperr.Validation(fmt.Sprintf("unknown workflow action %q", action))
	}
	if from == models.AssetArchived {
		return "", apperr.Conflicted(
			fmt.Sprintf("asset is archived; %s is not allowed", action),
			map[string]string{"from_status": string(from), "action": string(action)},
		)
	}
	return to, nil
}

// ParseReviewAction validates a reviewer decision.
func ParseReviewAction(s string) (Action, error) {
	switch Action(s) {
	case ActionApprove, ActionReject, ActionRequestChanges:
		return Action(s), nil
	default:
		return "", apperr.Validation(fmt.Sprintf("review action must be approve, reject, or request_changes; got %q", s))
	}
}

// reviewStatusFor maps a reviewer decision to the review round status.
func reviewStatusFor(action Action) models.ReviewStatus {
	switch action {
	case ActionApprove:
		return models.ReviewApproved
	case ActionReject:
		return models.ReviewRejected
	default:
		return models.ReviewChangesRequested
	}
}
