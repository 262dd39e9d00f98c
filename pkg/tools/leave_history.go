package tools

import (
	"context"
	"encoding/json"
	"time"

	"studenthub-be/internal/entity"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/internal/repository/unitofwork"
	"studenthub-be/pkg/llm"
)

const (
	ToolNameLeaveHistory = "getStudentLeaveHistory"

	// leaveHistoryLimit bounds how many records the model ever sees.
	leaveHistoryLimit = 5

	dateLayout = "2006-01-02"
)

// LeaveHistoryItem is the record shape handed back to the model.
type LeaveHistoryItem struct {
	Type            string `json:"type"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	ApplicationDate string `json:"applicationDate"`
}

// NewLeaveHistoryTool builds the leave history lookup tool. The lookup is
// always scoped to the authenticated caller: the declaration exposes no
// student parameter, and any identifier the model invents in its arguments
// is ignored.
func NewLeaveHistoryTool(repoFactory unitofwork.RepositoryFactory) Definition {
	return Definition{
		Tool: llm.Tool{
			Name:        ToolNameLeaveHistory,
			Description: "Get the calling student's most recent leave applications, newest first. Use this whenever the student asks about their leave requests, their status, or their history.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
		},
		EmptyResult: []LeaveHistoryItem{},
		Handler: func(ctx context.Context, caller entity.Identity, _ json.RawMessage) (any, error) {
			uow := repoFactory.NewUnitOfWork(ctx)

			requests, err := uow.LeaveRequestRepository().FindAll(ctx,
				specification.ByStudentID{StudentID: caller.UserID},
				specification.OrderBy{Field: "application_date", Desc: true},
				specification.Limit{N: leaveHistoryLimit},
			)
			if err != nil {
				return nil, err
			}

			items := make([]LeaveHistoryItem, 0, len(requests))
			for _, req := range requests {
				items = append(items, LeaveHistoryItem{
					Type:            req.Type,
					StartDate:       req.StartDate.Format(dateLayout),
					EndDate:         req.EndDate.Format(dateLayout),
					Reason:          req.Reason,
					Status:          string(req.Status),
					ApplicationDate: req.ApplicationDate.Format(time.RFC3339),
				})
			}
			return items, nil
		},
	}
}
