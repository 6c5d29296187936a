package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Approval states a workflow step can reach.
const (
	ApprovalPending  = ""
	ApprovalApproved = "Approved"
	ApprovalRejected = "Rejected"
)

type Rejection struct {
	RejectedBy primitive.ObjectID `bson:"rejectedBy" json:"rejectedBy"`
	RejectedAt time.Time          `bson:"rejectedAt" json:"rejectedAt"`
	Reason     string             `bson:"reason" json:"reason"`
	StepIndex  int                `bson:"stepIndex" json:"stepIndex"`
}

// WorkflowStepState is the per-submission state of one workflow definition.
// The array length is fixed at record-creation time; later workflow edits do
// not resize it.
type WorkflowStepState struct {
	Step           int                 `bson:"Step" json:"Step"`
	TriggerStatus  bool                `bson:"triggerStatus" json:"triggerStatus"`
	ApprovalStatus string              `bson:"approvalStatus" json:"approvalStatus"`
	Rejections     []Rejection         `bson:"rejections" json:"rejections"`
	TriggeredAt    *time.Time          `bson:"triggeredAt" json:"triggeredAt"`
	ApprovedAt     *time.Time          `bson:"approvedAt" json:"approvedAt"`
	ApprovedBy     *primitive.ObjectID `bson:"approvedBy" json:"approvedBy"`
}

// NewWorkflowSteps builds the initial workFlowSteps array, one empty state
// per workflow definition.
func NewWorkflowSteps(n int) []WorkflowStepState {
	steps := make([]WorkflowStepState, n)
	for i := range steps {
		steps[i] = WorkflowStepState{
			Step:           i,
			TriggerStatus:  false,
			ApprovalStatus: ApprovalPending,
			Rejections:     []Rejection{},
		}
	}
	return steps
}
